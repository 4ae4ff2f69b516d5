package weather

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/i474232898/weatherbeats/internal/common"
)

// Service asks its providers in priority order and returns the first
// successful snapshot. Failures are logged and joined into the returned
// error when no provider succeeds.
type Service struct {
	providers []Provider
	logger    *log.Logger
}

// NewService creates a new Service. A nil logger discards output.
func NewService(providers []Provider, logger *log.Logger) *Service {
	if logger == nil {
		logger = common.Discard()
	}
	return &Service{
		providers: providers,
		logger:    logger.WithPrefix("weather"),
	}
}

// Providers returns the provider names in priority order.
func (s *Service) Providers() []string {
	names := make([]string, 0, len(s.providers))
	for _, p := range s.providers {
		names = append(names, p.Name())
	}
	return names
}

// Current returns the current weather at the given coordinates.
func (s *Service) Current(ctx context.Context, at Coordinates) (Snapshot, error) {
	if len(s.providers) == 0 {
		s.logger.Error("no providers available", "lat", at.Lat, "lon", at.Lon)
		return Snapshot{}, ErrNoProviders
	}

	var errs []error
	for _, p := range s.providers {
		snap, err := p.Current(ctx, at)
		if err != nil {
			s.logger.Warn("provider fetch failed", "provider", p.Name(), "lat", at.Lat, "lon", at.Lon, "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			if ctx.Err() != nil {
				break
			}
			continue
		}

		if snap.Timestamp.IsZero() {
			snap.Timestamp = time.Now().UTC()
		}
		if snap.Provider == "" {
			snap.Provider = p.Name()
		}
		s.logger.Debug("weather fetched", "provider", snap.Provider, "condition", snap.Condition)
		return snap, nil
	}

	return Snapshot{}, fmt.Errorf("%w: %w", ErrUnavailable, errors.Join(errs...))
}
