package maps

import (
	"context"
	"fmt"
	"time"

	"github.com/kelvins/geocoder"
	"github.com/sony/gobreaker"

	"github.com/i474232898/weatherbeats/internal/resilience"
	"github.com/i474232898/weatherbeats/internal/store"
)

// DefaultGeocodeTimeout bounds a lookup when no timeout is configured.
const DefaultGeocodeTimeout = 10 * time.Second

// Geocoder resolves city names through the Google Geocoding API.
type Geocoder struct {
	apiKey  string
	timeout time.Duration
	circuit *gobreaker.CircuitBreaker
	lookup  func(geocoder.Address) (geocoder.Location, error)
}

// NewGeocoder builds a Geocoder. The library keeps its key in a package
// variable, so it is set here once rather than per call.
func NewGeocoder(apiKey string, timeout time.Duration) *Geocoder {
	if timeout <= 0 {
		timeout = DefaultGeocodeTimeout
	}
	if apiKey != "" {
		geocoder.ApiKey = apiKey
	}
	return &Geocoder{
		apiKey:  apiKey,
		timeout: timeout,
		circuit: resilience.NewBreaker("geocoder"),
		lookup:  geocoder.Geocoding,
	}
}

// Lookup returns the coordinates of city. The library call cannot be
// cancelled, so Lookup stops waiting for it after the configured timeout
// or when ctx is done, whichever comes first.
func (g *Geocoder) Lookup(ctx context.Context, city string) (store.Location, error) {
	if g.apiKey == "" {
		return store.Location{}, ErrMissingAPIKey
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	type result struct {
		loc geocoder.Location
		err error
	}
	done := make(chan result, 1)

	go func() {
		loc, err := resilience.Execute(g.circuit, func() (geocoder.Location, error) {
			return g.lookup(geocoder.Address{City: city})
		})
		done <- result{loc: loc, err: err}
	}()

	select {
	case <-ctx.Done():
		return store.Location{}, fmt.Errorf("geocode %q: %w", city, ctx.Err())
	case r := <-done:
		if r.err != nil {
			return store.Location{}, fmt.Errorf("geocode %q: %w", city, r.err)
		}
		return store.Location{City: city, Lat: r.loc.Latitude, Lon: r.loc.Longitude}, nil
	}
}
