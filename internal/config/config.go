package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/weatherbeats/internal/common"
	"github.com/i474232898/weatherbeats/internal/mood"
	"github.com/i474232898/weatherbeats/internal/store"
)

// FileEnv names the optional TOML file loaded before the environment.
const FileEnv = "WEATHERBEATS_CONFIG"

// LLM backends.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

type AppConfig struct {
	Port     string        `toml:"port" validate:"required,numeric"`
	LogLevel string        `toml:"log_level" validate:"oneof=debug info warn error fatal"`
	Database store.Config  `toml:"database"`
	Weather  WeatherConfig `toml:"weather"`
	Maps     MapsConfig    `toml:"maps"`
	LLM      LLMConfig     `toml:"llm"`
	Mood     MoodConfig    `toml:"mood"`

	// Outbound HTTP calls.
	HTTPTimeout    time.Duration `toml:"http_timeout" validate:"gt=0"`
	HTTPMaxRetries int           `toml:"http_max_retries" validate:"gte=0,lte=10"`

	// HealthcheckInterval is the database probe period; 0 disables it.
	HealthcheckInterval time.Duration `toml:"healthcheck_interval" validate:"gte=0"`

	// NgrokAuthToken is read for compatibility with existing deployments.
	NgrokAuthToken string `toml:"ngrok_auth_token"`
}

type WeatherConfig struct {
	OpenWeatherAPIKey string `toml:"openweather_api_key"`
	Units             string `toml:"units" validate:"omitempty,oneof=standard metric imperial"`
	WeatherAPIKey     string `toml:"weatherapi_api_key"`
	// OpenMeteoFallback appends the keyless Open-Meteo provider.
	OpenMeteoFallback bool `toml:"openmeteo_fallback"`
}

type MapsConfig struct {
	GoogleAPIKey string `toml:"google_api_key"`
}

type LLMConfig struct {
	Provider      string `toml:"provider" validate:"oneof=openai ollama"`
	OpenAIAPIKey  string `toml:"openai_api_key"`
	OpenAIModel   string `toml:"openai_model" validate:"required_if=Provider openai"`
	OpenAIBaseURL string `toml:"openai_base_url" validate:"omitempty,url"`
	OllamaHost    string `toml:"ollama_host" validate:"omitempty,url"`
	OllamaModel   string `toml:"ollama_model" validate:"required_if=Provider ollama"`
}

type MoodConfig struct {
	Default    string   `toml:"default" validate:"required"`
	Vocabulary []string `toml:"vocabulary" validate:"min=1,dive,required"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *AppConfig {
	return &AppConfig{
		Port:     "8080",
		LogLevel: "info",
		Database: store.Config{
			Driver:       store.DriverSQLite,
			Path:         "weatherbeats.db",
			Name:         "public",
			MaxOpenConns: 10,
			MaxIdleConns: 5,
			Tables:       store.DefaultTables(),
		},
		LLM: LLMConfig{
			Provider:    ProviderOpenAI,
			OpenAIModel: "gpt-3.5-turbo",
			OllamaHost:  "http://localhost:11434",
			OllamaModel: "llama3",
		},
		Mood: MoodConfig{
			Default:    mood.DefaultMood,
			Vocabulary: append([]string(nil), mood.DefaultVocabulary...),
		},
		HTTPTimeout:         10 * time.Second,
		HTTPMaxRetries:      0,
		HealthcheckInterval: 5 * time.Minute,
	}
}

// Load reads configuration from defaults, the optional TOML file named by
// WEATHERBEATS_CONFIG, and the environment, in increasing precedence.
func Load() (*AppConfig, error) {
	return LoadFrom("")
}

// LoadFrom is Load with an explicit TOML file. An empty path falls back to
// WEATHERBEATS_CONFIG.
func LoadFrom(path string) (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file loaded", "err", err)
	}

	cfg := Default()

	if path == "" {
		path = os.Getenv(FileEnv)
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *AppConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func (c *AppConfig) loadFile(path string) error {
	if _, err := toml.DecodeFile(path, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *AppConfig) applyEnv() error {
	c.Port = getenvDefault("PORT", getenvDefault("FLASK_PORT", c.Port))
	c.LogLevel = getenvDefault("LOG_LEVEL", c.LogLevel)

	db := &c.Database
	db.Driver = getenvDefault("DB_DRIVER", db.Driver)
	db.DSN = getenvDefault("DB_DSN", db.DSN)
	db.Path = getenvDefault("DB_PATH", db.Path)
	db.Host = getenvDefault("DB_HOST", db.Host)
	db.Username = getenvDefault("DB_USERNAME", db.Username)
	db.Password = getenvDefault("DB_PASSWORD", db.Password)
	db.Name = getenvDefault("DB_NAME", db.Name)
	db.MaxOpenConns = getenvInt("DB_MAX_OPEN_CONNS", db.MaxOpenConns)
	db.MaxIdleConns = getenvInt("DB_MAX_IDLE_CONNS", db.MaxIdleConns)

	w := &c.Weather
	w.OpenWeatherAPIKey = getenvDefault("WEATHER_API_KEY", getenvDefault("OPENWEATHER_API_KEY", w.OpenWeatherAPIKey))
	w.Units = getenvDefault("WEATHER_UNITS", w.Units)
	w.WeatherAPIKey = getenvDefault("WEATHERAPI_API_KEY", w.WeatherAPIKey)
	w.OpenMeteoFallback = getenvBool("WEATHER_FALLBACK_OPENMETEO", w.OpenMeteoFallback)

	c.Maps.GoogleAPIKey = getenvDefault("GOOGLE_MAPS_API_KEY", c.Maps.GoogleAPIKey)

	l := &c.LLM
	l.Provider = getenvDefault("LLM_PROVIDER", l.Provider)
	l.OpenAIAPIKey = getenvDefault("OPENAI_API_KEY", l.OpenAIAPIKey)
	l.OpenAIModel = getenvDefault("OPENAI_MODEL", l.OpenAIModel)
	l.OpenAIBaseURL = getenvDefault("OPENAI_BASE_URL", l.OpenAIBaseURL)
	l.OllamaHost = getenvDefault("OLLAMA_HOST", l.OllamaHost)
	l.OllamaModel = getenvDefault("OLLAMA_MODEL", l.OllamaModel)

	c.Mood.Default = getenvDefault("DEFAULT_MOOD", c.Mood.Default)
	if v := os.Getenv("MOOD_VOCABULARY"); v != "" {
		c.Mood.Vocabulary = common.SplitList(v, ",")
	}

	c.NgrokAuthToken = getenvDefault("NGROK_AUTH_TOKEN", c.NgrokAuthToken)
	c.HTTPMaxRetries = getenvInt("HTTP_MAX_RETRIES", c.HTTPMaxRetries)

	var err error
	if c.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", c.HTTPTimeout); err != nil {
		return err
	}
	if c.HealthcheckInterval, err = getenvDuration("HEALTHCHECK_INTERVAL", c.HealthcheckInterval); err != nil {
		return err
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
