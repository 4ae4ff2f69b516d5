package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/i474232898/weatherbeats/internal/mood"
	"github.com/i474232898/weatherbeats/internal/store"
)

var envKeys = []string{
	FileEnv, "PORT", "FLASK_PORT", "LOG_LEVEL",
	"DB_DRIVER", "DB_DSN", "DB_PATH", "DB_HOST", "DB_USERNAME", "DB_PASSWORD", "DB_NAME",
	"DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS",
	"WEATHER_API_KEY", "OPENWEATHER_API_KEY", "WEATHER_UNITS", "WEATHERAPI_API_KEY", "WEATHER_FALLBACK_OPENMETEO",
	"GOOGLE_MAPS_API_KEY",
	"LLM_PROVIDER", "OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_BASE_URL", "OLLAMA_HOST", "OLLAMA_MODEL",
	"DEFAULT_MOOD", "MOOD_VOCABULARY", "NGROK_AUTH_TOKEN",
	"HTTP_TIMEOUT", "HTTP_MAX_RETRIES", "HEALTHCHECK_INTERVAL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.Database.Driver != store.DriverSQLite || cfg.Database.Path != "weatherbeats.db" {
		t.Errorf("unexpected database defaults %+v", cfg.Database)
	}
	if cfg.Database.MaxOpenConns != 10 || cfg.Database.MaxIdleConns != 5 {
		t.Errorf("unexpected pool defaults %+v", cfg.Database)
	}
	if cfg.Database.Tables != store.DefaultTables() {
		t.Errorf("unexpected tables %+v", cfg.Database.Tables)
	}
	if cfg.LLM.Provider != ProviderOpenAI || cfg.LLM.OpenAIModel != "gpt-3.5-turbo" {
		t.Errorf("unexpected llm defaults %+v", cfg.LLM)
	}
	if cfg.Mood.Default != mood.DefaultMood || len(cfg.Mood.Vocabulary) != len(mood.DefaultVocabulary) {
		t.Errorf("unexpected mood defaults %+v", cfg.Mood)
	}
	if cfg.HTTPTimeout != 10*time.Second || cfg.HTTPMaxRetries != 0 || cfg.HealthcheckInterval != 5*time.Minute {
		t.Errorf("unexpected http/scheduler defaults %+v", cfg)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("FLASK_PORT", "5000")
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("DB_HOST", "db:3306")
	t.Setenv("DB_USERNAME", "beats")
	t.Setenv("DB_MAX_OPEN_CONNS", "3")
	t.Setenv("OPENWEATHER_API_KEY", "legacy")
	t.Setenv("WEATHER_API_KEY", "owm")
	t.Setenv("WEATHER_FALLBACK_OPENMETEO", "true")
	t.Setenv("LLM_PROVIDER", "ollama")
	t.Setenv("DEFAULT_MOOD", "Tranquil")
	t.Setenv("MOOD_VOCABULARY", "Tranquil, Stormy ,")
	t.Setenv("HTTP_TIMEOUT", "3s")
	t.Setenv("HTTP_MAX_RETRIES", "2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "5000" {
		t.Errorf("Port = %q, want FLASK_PORT value", cfg.Port)
	}
	if cfg.Database.Driver != store.DriverMySQL || cfg.Database.Host != "db:3306" || cfg.Database.Username != "beats" || cfg.Database.MaxOpenConns != 3 {
		t.Errorf("unexpected database %+v", cfg.Database)
	}
	if cfg.Weather.OpenWeatherAPIKey != "owm" || !cfg.Weather.OpenMeteoFallback {
		t.Errorf("unexpected weather %+v", cfg.Weather)
	}
	if cfg.LLM.Provider != ProviderOllama {
		t.Errorf("unexpected provider %q", cfg.LLM.Provider)
	}
	if cfg.Mood.Default != "Tranquil" || !reflect.DeepEqual(cfg.Mood.Vocabulary, []string{"Tranquil", "Stormy"}) {
		t.Errorf("unexpected mood %+v", cfg.Mood)
	}
	if cfg.HTTPTimeout != 3*time.Second || cfg.HTTPMaxRetries != 2 {
		t.Errorf("unexpected http settings %v %d", cfg.HTTPTimeout, cfg.HTTPMaxRetries)
	}

	t.Setenv("PORT", "9090")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("PORT should win over FLASK_PORT, got %q", cfg.Port)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "weatherbeats.toml")
	content := `
port = "7000"
http_timeout = "4s"

[database]
driver = "pgx"
host = "pg:5432"
username = "beats"

[database.tables]
song_moods = "songs"
lyrics = "lyrics"
city_moods = "city_moods"
locations = "locations"

[mood]
default = "Relaxed"
vocabulary = ["Relaxed", "Sad"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(FileEnv, path)
	t.Setenv("DB_HOST", "override:5432")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "7000" || cfg.HTTPTimeout != 4*time.Second {
		t.Errorf("file values not applied: port %q timeout %v", cfg.Port, cfg.HTTPTimeout)
	}
	if cfg.Database.Driver != store.DriverPostgres || cfg.Database.Username != "beats" {
		t.Errorf("unexpected database %+v", cfg.Database)
	}
	if cfg.Database.Host != "override:5432" {
		t.Errorf("env should override file, got host %q", cfg.Database.Host)
	}
	if cfg.Database.Name != "public" || cfg.Database.MaxOpenConns != 10 {
		t.Errorf("defaults lost for unset file keys: %+v", cfg.Database)
	}
	if cfg.Database.Tables.SongMoods != "songs" {
		t.Errorf("unexpected tables %+v", cfg.Database.Tables)
	}
	if cfg.Mood.Default != "Relaxed" || !reflect.DeepEqual(cfg.Mood.Vocabulary, []string{"Relaxed", "Sad"}) {
		t.Errorf("unexpected mood %+v", cfg.Mood)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"driver", "DB_DRIVER", "oracle"},
		{"provider", "LLM_PROVIDER", "bard"},
		{"duration", "HTTP_TIMEOUT", "soon"},
		{"port", "PORT", "eighty"},
		{"units", "WEATHER_UNITS", "kelvin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.val)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", tt.key, tt.val)
			}
		})
	}

	clearEnv(t)
	t.Setenv(FileEnv, filepath.Join(t.TempDir(), "missing.toml"))
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}
