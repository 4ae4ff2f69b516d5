package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/i474232898/weatherbeats/internal/config"
	"github.com/i474232898/weatherbeats/internal/llm"
	"github.com/i474232898/weatherbeats/internal/maps"
	"github.com/i474232898/weatherbeats/internal/mood"
	"github.com/i474232898/weatherbeats/internal/resilience"
	"github.com/i474232898/weatherbeats/internal/service"
	"github.com/i474232898/weatherbeats/internal/store"
	"github.com/i474232898/weatherbeats/internal/weather"
	"github.com/i474232898/weatherbeats/internal/weather/providers"
)

// components holds everything a command needs; Close releases the database.
type components struct {
	store   *store.SQLStore
	service *service.Service
}

func (c *components) Close() error {
	return c.store.Close()
}

func openStore(ctx context.Context, cfg *config.AppConfig) (*store.SQLStore, error) {
	st, err := store.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Database.Driver, err)
	}
	return st, nil
}

func build(ctx context.Context, cfg *config.AppConfig, logger *log.Logger) (*components, error) {
	st, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// Shared HTTP client for outbound calls.
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	backoff := resilience.DefaultBackoff()
	backoff.MaxRetries = cfg.HTTPMaxRetries

	weatherSvc := weather.NewService(weatherProviders(cfg, httpClient, backoff, logger), logger)
	logger.Info("weather providers configured", "providers", weatherSvc.Providers())

	completer, err := newCompleter(cfg, httpClient, backoff)
	if err != nil {
		completer = unavailableCompleter{err: err}
	}
	inferencer := mood.NewInferencer(completer, cfg.Mood.Vocabulary, cfg.Mood.Default, logger)
	if err != nil {
		logger.Warn("language model unavailable; every mood falls back to the default", "err", err, "default", inferencer.DefaultMood())
	}

	d := service.Deps{
		Store:   st,
		Weather: weatherSvc,
		Moods:   inferencer,
		Maps:    maps.NewStaticMapClient(httpClient, cfg.Maps.GoogleAPIKey, backoff),
		Logger:  logger,
	}
	if cfg.Maps.GoogleAPIKey != "" {
		d.Geocoder = maps.NewGeocoder(cfg.Maps.GoogleAPIKey, cfg.HTTPTimeout)
	} else {
		logger.Warn("GOOGLE_MAPS_API_KEY is not set; static maps and geocoding are disabled")
	}

	return &components{store: st, service: service.New(d)}, nil
}

// weatherProviders returns the providers in fallback order. OpenWeather is
// always first; it reports a missing key per request.
func weatherProviders(cfg *config.AppConfig, client *http.Client, backoff resilience.BackoffConfig, logger *log.Logger) []weather.Provider {
	w := cfg.Weather
	if w.OpenWeatherAPIKey == "" {
		logger.Warn("WEATHER_API_KEY is not set")
	}

	provs := []weather.Provider{
		providers.NewOpenWeatherProvider(client, w.OpenWeatherAPIKey, w.Units, backoff),
	}
	if w.WeatherAPIKey != "" {
		provs = append(provs, providers.NewWeatherAPIProvider(client, w.WeatherAPIKey, backoff))
	}
	if w.OpenMeteoFallback {
		provs = append(provs, providers.NewOpenMeteoProvider(client, backoff))
	}
	return provs
}

func newCompleter(cfg *config.AppConfig, client *http.Client, backoff resilience.BackoffConfig) (mood.Completer, error) {
	l := cfg.LLM
	switch l.Provider {
	case config.ProviderOllama:
		return llm.NewOllamaClient(client, l.OllamaHost, l.OllamaModel, backoff), nil
	case config.ProviderOpenAI:
		c, err := llm.NewOpenAIClient(client, l.OpenAIAPIKey, l.OpenAIModel, l.OpenAIBaseURL)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", l.Provider)
	}
}

// unavailableCompleter fails every completion with the construction error.
type unavailableCompleter struct {
	err error
}

func (u unavailableCompleter) Complete(context.Context, string, string) (string, error) {
	if u.err == nil {
		return "", errors.New("language model unavailable")
	}
	return "", u.err
}
