package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weatherbeats/internal/resilience"
	"github.com/i474232898/weatherbeats/internal/weather"
)

// OpenWeatherProvider implements the weather.Provider interface for OpenWeatherMap.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	units   string
	baseURL string
	httpCfg resilience.HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewOpenWeatherProvider builds the provider. units is passed through to the
// API ("standard", "metric", "imperial"); empty means the API default, Kelvin.
// Snapshots are converted to Celsius and m/s whatever was requested.
func NewOpenWeatherProvider(client *http.Client, apiKey, units string, backoff resilience.BackoffConfig) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		units:   units,
		baseURL: "https://api.openweathermap.org/data/2.5/weather",
		httpCfg: resilience.HTTPClientConfig{
			Client:  client,
			Backoff: backoff,
		},
		circuit: resilience.NewBreaker("openweather"),
	}
}

// WithBaseURL points the provider at another endpoint.
func (p *OpenWeatherProvider) WithBaseURL(u string) *OpenWeatherProvider {
	p.baseURL = u
	return p
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

func (p *OpenWeatherProvider) Current(ctx context.Context, at weather.Coordinates) (weather.Snapshot, error) {
	if p.apiKey == "" {
		return weather.Snapshot{}, weather.ErrMissingAPIKey
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("lat", formatCoord(at.Lat))
		values.Set("lon", formatCoord(at.Lon))
		values.Set("appid", p.apiKey)
		if p.units != "" {
			values.Set("units", p.units)
		}

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := resilience.DoRequest(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.Snapshot{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp     float64 `json:"temp"`
			Humidity float64 `json:"humidity"`
		} `json:"main"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
		Clouds struct {
			All float64 `json:"all"`
		} `json:"clouds"`
		Weather []struct {
			Main        string `json:"main"`
			Description string `json:"description"`
		} `json:"weather"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Snapshot{}, fmt.Errorf("openweather: decode response: %w", err)
	}

	ts := time.Now().UTC()
	if payload.Dt > 0 {
		ts = time.Unix(payload.Dt, 0).UTC()
	}

	temp, wind := toMetric(p.units, payload.Main.Temp, payload.Wind.Speed)

	snap := weather.Snapshot{
		Condition:   weather.ConditionUnknown,
		Temperature: temp,
		Clouds:      payload.Clouds.All,
		WindSpeed:   wind,
		Humidity:    payload.Main.Humidity,
		Provider:    p.name,
		Timestamp:   ts,
	}
	if len(payload.Weather) > 0 {
		if payload.Weather[0].Main != "" {
			snap.Condition = weather.Condition(payload.Weather[0].Main)
		}
		snap.Description = payload.Weather[0].Description
	}
	return snap, nil
}

// toMetric converts an OpenWeather temperature and wind speed reported in
// units to Celsius and m/s.
func toMetric(units string, temp, wind float64) (float64, float64) {
	switch units {
	case "metric":
		return temp, wind
	case "imperial":
		return (temp - 32) * 5 / 9, wind * 0.44704
	default:
		return temp - 273.15, wind
	}
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
