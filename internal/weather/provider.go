package weather

import (
	"context"
	"errors"
)

var (
	// ErrMissingAPIKey is returned by providers that need a key and have none.
	ErrMissingAPIKey = errors.New("weather api key is not configured")
	// ErrNoProviders is returned when the service has nothing to ask.
	ErrNoProviders = errors.New("no weather providers configured")
	// ErrUnavailable is returned when every provider failed.
	ErrUnavailable = errors.New("weather data unavailable")
)

// Provider abstracts a current-weather source keyed by coordinates
// (e.g. OpenWeatherMap, WeatherAPI, Open-Meteo).
type Provider interface {
	Name() string
	Current(ctx context.Context, at Coordinates) (Snapshot, error)
}
