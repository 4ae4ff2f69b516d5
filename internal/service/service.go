// Package service composes the gateways into the per-request pipelines
// behind the HTTP routes. It holds no mutable state.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/i474232898/weatherbeats/internal/common"
	"github.com/i474232898/weatherbeats/internal/maps"
	"github.com/i474232898/weatherbeats/internal/mood"
	"github.com/i474232898/weatherbeats/internal/resilience"
	"github.com/i474232898/weatherbeats/internal/store"
	"github.com/i474232898/weatherbeats/internal/weather"
)

// ErrUpstream marks failures of a third-party API (weather, maps).
var ErrUpstream = errors.New("upstream service failed")

// Store is the subset of the data store gateway the service reads from.
type Store interface {
	MoodsForCity(ctx context.Context, city string) ([]string, error)
	LocationByCity(ctx context.Context, city string) (store.Location, error)
	SongsForMoods(ctx context.Context, moods []string) ([]store.Song, error)
	Ping(ctx context.Context) error
}

type WeatherSource interface {
	Current(ctx context.Context, at weather.Coordinates) (weather.Snapshot, error)
}

type MoodInferrer interface {
	Infer(ctx context.Context, snap weather.Snapshot) mood.Result
}

type StaticMapper interface {
	Image(ctx context.Context, lat, lon float64) (string, error)
}

type Geocoder interface {
	Lookup(ctx context.Context, city string) (store.Location, error)
}

// Deps groups the collaborators of a Service. Geocoder is optional.
type Deps struct {
	Store    Store
	Weather  WeatherSource
	Moods    MoodInferrer
	Maps     StaticMapper
	Geocoder Geocoder
	Logger   *log.Logger
}

type Service struct {
	store    Store
	weather  WeatherSource
	moods    MoodInferrer
	maps     StaticMapper
	geocoder Geocoder
	logger   *log.Logger
}

func New(d Deps) *Service {
	logger := d.Logger
	if logger == nil {
		logger = common.Discard()
	}
	return &Service{
		store:    d.Store,
		weather:  d.Weather,
		moods:    d.Moods,
		maps:     d.Maps,
		geocoder: d.Geocoder,
		logger:   logger.WithPrefix("service"),
	}
}

// CityMood is the pre-assigned mood list of a city.
type CityMood struct {
	Location string   `json:"location"`
	Mood     []string `json:"mood"`
}

// Playlist is the song listing for a set of moods. Moods is the distinct
// mood set across all returned songs, sorted and comma-joined.
type Playlist struct {
	Songs []store.Song `json:"songs"`
	Moods string       `json:"moods,omitempty"`
}

// WeatherMood is the result of the live weather to mood pipeline.
type WeatherMood struct {
	Location string   `json:"location"`
	Lat      float64  `json:"lat"`
	Lon      float64  `json:"long"`
	Mood     []string `json:"mood"`
	Weather  string   `json:"weather"`
	Fallback bool     `json:"fallback"`
}

// MoodForCity reads the moods stored for city.
func (s *Service) MoodForCity(ctx context.Context, city string) (CityMood, error) {
	moods, err := s.store.MoodsForCity(ctx, city)
	if err != nil {
		return CityMood{}, err
	}
	return CityMood{Location: city, Mood: moods}, nil
}

// SongsForMoods returns the songs tagged with any of moods.
func (s *Service) SongsForMoods(ctx context.Context, moods []string) (Playlist, error) {
	songs, err := s.store.SongsForMoods(ctx, moods)
	if err != nil {
		return Playlist{}, err
	}
	if songs == nil {
		songs = []store.Song{}
	}

	var all []string
	for _, song := range songs {
		all = append(all, common.SplitList(song.Moods, ",")...)
	}
	all = common.Dedupe(all)
	sort.Strings(all)

	return Playlist{Songs: songs, Moods: strings.Join(all, ",")}, nil
}

// WeatherMood resolves city, fetches its current weather and infers moods
// from it. Mood inference degrades to the default mood on its own; weather
// failures are returned wrapped in ErrUpstream.
func (s *Service) WeatherMood(ctx context.Context, city string) (WeatherMood, error) {
	loc, err := s.resolveLocation(ctx, city)
	if err != nil {
		return WeatherMood{}, err
	}

	snap, err := s.weather.Current(ctx, weather.Coordinates{Lat: loc.Lat, Lon: loc.Lon})
	if err != nil {
		s.logger.Error("weather lookup failed", "city", city, "err", err)
		return WeatherMood{}, fmt.Errorf("%w: weather: %w", ErrUpstream, err)
	}

	res := s.moods.Infer(ctx, snap)
	s.logger.Debug("inferred moods", "city", city, "condition", snap.Condition, "moods", res.Moods, "fallback", res.Fallback)

	return WeatherMood{
		Location: city,
		Lat:      loc.Lat,
		Lon:      loc.Lon,
		Mood:     res.Moods,
		Weather:  string(snap.Condition),
		Fallback: res.Fallback,
	}, nil
}

// LocationImage returns the base64 static map for a coordinate pair.
func (s *Service) LocationImage(ctx context.Context, lat, lon float64) (string, error) {
	img, err := s.maps.Image(ctx, lat, lon)
	if err != nil {
		s.logger.Error("static map failed", "lat", lat, "long", lon, "err", err)
		return "", fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return img, nil
}

// MapFragment resolves city and renders an interactive map centred on it.
func (s *Service) MapFragment(ctx context.Context, city string) (string, error) {
	loc, err := s.resolveLocation(ctx, city)
	if err != nil {
		return "", err
	}
	return maps.RenderInteractive(loc.Lat, loc.Lon)
}

// Ping checks the data store.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// resolveLocation prefers the locations table and falls back to the
// geocoder, when configured, for cities missing from it.
func (s *Service) resolveLocation(ctx context.Context, city string) (store.Location, error) {
	loc, err := s.store.LocationByCity(ctx, city)
	if err == nil {
		return loc, nil
	}
	if !errors.Is(err, store.ErrNotFound) || s.geocoder == nil {
		return store.Location{}, err
	}

	loc, gerr := s.geocoder.Lookup(ctx, city)
	if gerr != nil {
		switch {
		case errors.Is(gerr, maps.ErrMissingAPIKey):
			return store.Location{}, err
		case errors.Is(gerr, context.DeadlineExceeded), errors.Is(gerr, resilience.ErrCircuitOpen):
			s.logger.Error("geocoder unavailable", "city", city, "err", gerr)
			return store.Location{}, fmt.Errorf("%w: %w", ErrUpstream, gerr)
		}
		s.logger.Warn("geocoding failed", "city", city, "err", gerr)
		return store.Location{}, fmt.Errorf("%w: %q", store.ErrNotFound, city)
	}
	return loc, nil
}
