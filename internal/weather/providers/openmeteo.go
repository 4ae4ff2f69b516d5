package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weatherbeats/internal/resilience"
	"github.com/i474232898/weatherbeats/internal/weather"
)

// OpenMeteoProvider implements the weather.Provider interface for Open-Meteo.
// It needs no API key and is used as a last-resort fallback.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	httpCfg resilience.HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoProvider(client *http.Client, backoff resilience.BackoffConfig) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: "https://api.open-meteo.com/v1/forecast",
		httpCfg: resilience.HTTPClientConfig{
			Client:  client,
			Backoff: backoff,
		},
		circuit: resilience.NewBreaker("openmeteo"),
	}
}

// WithBaseURL points the provider at another endpoint.
func (p *OpenMeteoProvider) WithBaseURL(u string) *OpenMeteoProvider {
	p.baseURL = u
	return p
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

func (p *OpenMeteoProvider) Current(ctx context.Context, at weather.Coordinates) (weather.Snapshot, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", formatCoord(at.Lat))
		values.Set("longitude", formatCoord(at.Lon))
		values.Set("current", "temperature_2m,relative_humidity_2m,cloud_cover,wind_speed_10m,weather_code")
		values.Set("wind_speed_unit", "ms")
		values.Set("timeformat", "unixtime")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := resilience.DoRequest(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.Snapshot{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Current struct {
			Time        int64   `json:"time"`
			Temperature float64 `json:"temperature_2m"`
			Humidity    float64 `json:"relative_humidity_2m"`
			CloudCover  float64 `json:"cloud_cover"`
			WindSpeed   float64 `json:"wind_speed_10m"`
			WeatherCode int     `json:"weather_code"`
		} `json:"current"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Snapshot{}, fmt.Errorf("openmeteo: decode response: %w", err)
	}

	ts := time.Now().UTC()
	if payload.Current.Time > 0 {
		ts = time.Unix(payload.Current.Time, 0).UTC()
	}

	cond, desc := mapOpenMeteoCondition(payload.Current.WeatherCode)

	return weather.Snapshot{
		Condition:   cond,
		Description: desc,
		Temperature: payload.Current.Temperature,
		Clouds:      payload.Current.CloudCover,
		WindSpeed:   payload.Current.WindSpeed,
		Humidity:    payload.Current.Humidity,
		Provider:    p.name,
		Timestamp:   ts,
	}, nil
}

// mapOpenMeteoCondition maps WMO weather codes (simplified).
func mapOpenMeteoCondition(code int) (weather.Condition, string) {
	switch {
	case code == 0:
		return weather.ConditionClear, "clear sky"
	case code >= 1 && code <= 3:
		return weather.ConditionClouds, "partly cloudy"
	case code == 45 || code == 48:
		return weather.ConditionMist, "fog"
	case code >= 51 && code <= 57:
		return weather.ConditionDrizzle, "drizzle"
	case (code >= 61 && code <= 67) || (code >= 80 && code <= 82):
		return weather.ConditionRain, "rain"
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return weather.ConditionSnow, "snow"
	case code >= 95:
		return weather.ConditionThunderstorm, "thunderstorm"
	default:
		return weather.ConditionUnknown, ""
	}
}
