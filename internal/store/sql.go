package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"github.com/i474232898/weatherbeats/internal/common"
)

var (
	// ErrNotFound is returned when no row matches the requested key.
	ErrNotFound = errors.New("no rows for requested key")
	// ErrNoMoods is returned when a song lookup is attempted without moods.
	ErrNoMoods = errors.New("no moods provided")

	ErrUnknownDriver = errors.New("unknown database driver")
	ErrInvalidConfig = errors.New("invalid database configuration")
	ErrInvalidTable  = errors.New("invalid table name")
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLStore is a read-only gateway over the weatherBeats tables. All user
// supplied values are bound as driver parameters; only configured table
// names are formatted into query text.
type SQLStore struct {
	db     *sql.DB
	driver string
	tables Tables
}

// Open connects to the configured database, applies pool settings and
// verifies the connection.
func Open(ctx context.Context, cfg Config) (*SQLStore, error) {
	dsn, err := cfg.DataSourceName()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s, err := New(db, cfg.Driver, cfg.Tables)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an already open database handle.
func New(db *sql.DB, driver string, tables Tables) (*SQLStore, error) {
	switch driver {
	case DriverSQLite, DriverPostgres, DriverMySQL:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
	for _, name := range []string{tables.SongMoods, tables.Lyrics, tables.CityMoods, tables.Locations} {
		if !identRe.MatchString(name) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTable, name)
		}
	}
	return &SQLStore{db: db, driver: driver, tables: tables}, nil
}

// Close releases the connection pool.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// MoodsForCity returns the pre-assigned moods of a city, split from the
// comma-joined column value.
func (s *SQLStore) MoodsForCity(ctx context.Context, city string) ([]string, error) {
	query := fmt.Sprintf("SELECT mood FROM %s WHERE cityname = ?", s.tables.CityMoods)

	var raw sql.NullString
	err := s.db.QueryRowContext(ctx, s.rebind(query), city).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load city moods: %w", err)
	}

	return common.SplitList(raw.String, ","), nil
}

// LocationByCity returns the coordinates stored for a city.
func (s *SQLStore) LocationByCity(ctx context.Context, city string) (Location, error) {
	query := fmt.Sprintf("SELECT latitude, longtitude FROM %s WHERE cityname = ?", s.tables.Locations)

	loc := Location{City: city}
	err := s.db.QueryRowContext(ctx, s.rebind(query), city).Scan(&loc.Lat, &loc.Lon)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Location{}, ErrNotFound
		}
		return Location{}, fmt.Errorf("failed to load location: %w", err)
	}
	return loc, nil
}

// SongsForMoods returns the songs tagged with any of the given moods. Each
// song carries its full distinct mood set, comma-joined in label order.
func (s *SQLStore) SongsForMoods(ctx context.Context, moods []string) ([]Song, error) {
	moods = common.Dedupe(moods)
	if len(moods) == 0 {
		return nil, ErrNoMoods
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(moods)), ", ")
	query := fmt.Sprintf(`
		SELECT s.song_name, s.artist_name, s.genre, l.lyrics, l.url, a.mood
		FROM %[1]s s
		JOIN %[2]s l ON s.song_name = l.song_name AND s.artist_name = l.artist_name
		JOIN %[1]s a ON a.song_name = s.song_name AND a.artist_name = s.artist_name
		WHERE s.mood IN (%[3]s)
		ORDER BY s.song_name, s.artist_name, a.mood
	`, s.tables.SongMoods, s.tables.Lyrics, placeholders)

	args := make([]any, len(moods))
	for i, m := range moods {
		args[i] = m
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}
	defer rows.Close()

	type songKey struct {
		name, artist, genre, lyrics, uri string
	}

	var (
		order    []songKey
		moodSets = make(map[songKey][]string)
	)

	for rows.Next() {
		var (
			k                  songKey
			genre, lyrics, uri sql.NullString
			mood               sql.NullString
		)
		if err := rows.Scan(&k.name, &k.artist, &genre, &lyrics, &uri, &mood); err != nil {
			return nil, fmt.Errorf("failed to scan song: %w", err)
		}
		k.genre, k.lyrics, k.uri = genre.String, lyrics.String, uri.String

		set, seen := moodSets[k]
		if !seen {
			order = append(order, k)
		}
		if mood.Valid && mood.String != "" {
			set = append(set, mood.String)
		}
		moodSets[k] = set
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate songs: %w", err)
	}

	songs := make([]Song, 0, len(order))
	for _, k := range order {
		songs = append(songs, Song{
			Name:   k.name,
			Artist: k.artist,
			Genre:  k.genre,
			Lyrics: k.lyrics,
			URI:    k.uri,
			Moods:  strings.Join(common.Dedupe(moodSets[k]), ","),
		})
	}
	return songs, nil
}

// TopMoodCounts returns the most frequent moods across all songs. Rows
// without a mood label are not counted.
func (s *SQLStore) TopMoodCounts(ctx context.Context, limit int) ([]MoodCount, error) {
	if limit <= 0 {
		limit = 10
	}
	query := fmt.Sprintf(`
		SELECT mood, COUNT(mood) AS mood_count
		FROM %s
		WHERE mood IS NOT NULL AND mood <> ''
		GROUP BY mood
		ORDER BY mood_count DESC, mood
		LIMIT ?
	`, s.tables.SongMoods)

	rows, err := s.db.QueryContext(ctx, s.rebind(query), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query mood counts: %w", err)
	}
	defer rows.Close()

	var counts []MoodCount
	for rows.Next() {
		var mc MoodCount
		if err := rows.Scan(&mc.Mood, &mc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan mood count: %w", err)
		}
		counts = append(counts, mc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate mood counts: %w", err)
	}
	return counts, nil
}

// rebind rewrites '?' placeholders into the numbered form pgx expects.
func (s *SQLStore) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
