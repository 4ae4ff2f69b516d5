// Package maps provides the location visualisations: a static map image,
// an embeddable interactive map, and geocoding for unknown cities.
package maps

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weatherbeats/internal/resilience"
)

// ErrMissingAPIKey is returned when a Google Maps call is made without a key.
var ErrMissingAPIKey = errors.New("maps api key is not configured")

// StaticMapClient fetches roadmap images centred on a coordinate pair from
// the Google Static Maps API.
type StaticMapClient struct {
	apiKey  string
	baseURL string
	zoom    int
	size    string
	httpCfg resilience.HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewStaticMapClient(client *http.Client, apiKey string, backoff resilience.BackoffConfig) *StaticMapClient {
	return &StaticMapClient{
		apiKey:  apiKey,
		baseURL: "https://maps.googleapis.com/maps/api/staticmap",
		zoom:    4,
		size:    "700x700",
		httpCfg: resilience.HTTPClientConfig{
			Client:  client,
			Backoff: backoff,
		},
		circuit: resilience.NewBreaker("staticmap"),
	}
}

// WithBaseURL points the client at another endpoint.
func (c *StaticMapClient) WithBaseURL(u string) *StaticMapClient {
	c.baseURL = u
	return c
}

// Image returns the base64-encoded PNG for the given coordinates, with a
// red marker on the centre.
func (c *StaticMapClient) Image(ctx context.Context, lat, lon float64) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingAPIKey
	}

	center := formatCoord(lat) + "," + formatCoord(lon)

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("center", center)
		values.Set("zoom", strconv.Itoa(c.zoom))
		values.Set("size", c.size)
		values.Set("maptype", "roadmap")
		values.Set("markers", "color:red|label:C|"+center)
		values.Set("key", c.apiKey)

		u := fmt.Sprintf("%s?%s", c.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := resilience.DoRequest(ctx, c.httpCfg, c.circuit, buildRequest)
	if err != nil {
		return "", fmt.Errorf("static map: %w", err)
	}
	defer resp.Body.Close()

	img, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("static map: read body: %w", err)
	}
	return base64.StdEncoding.EncodeToString(img), nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
