package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type AppConfig struct {
	Port     string `envconfig:"PORT" default:"8080" validate:"required,numeric"`
	AppEnv   string `envconfig:"APP_ENV" default:"local" validate:"oneof=local dev staging prod"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	DBPath   string `envconfig:"DB_PATH" default:"agriyield.db" validate:"required"`

	LLMProvider string `envconfig:"LLM_PROVIDER" default:"gemini" validate:"oneof=gemini openai mock"`
	LLMEndpoint string `envconfig:"LLM_ENDPOINT"`
	LLMAPIKey   string `envconfig:"LLM_API_KEY"`
	LLMModel    string `envconfig:"LLM_MODEL"`

	WeatherAPIKey   string        `envconfig:"OPENWEATHER_API_KEY"`
	WeatherBaseURL  string        `envconfig:"OPENWEATHER_BASE_URL" default:"https://api.openweathermap.org/data/2.5" validate:"url"`
	WeatherCacheTTL time.Duration `envconfig:"WEATHER_CACHE_TTL" default:"10m"`
	WeatherRPS      float64       `envconfig:"WEATHER_RPS" default:"1" validate:"gt=0"`
	WeatherBurst    int           `envconfig:"WEATHER_BURST" default:"5" validate:"gte=1"`

	FrostThresholdC    float64  `envconfig:"FROST_THRESHOLD_C" default:"2"`
	HeatwaveThresholdC float64  `envconfig:"HEATWAVE_THRESHOLD_C" default:"35"`
	StormKeywords      []string `envconfig:"STORM_KEYWORDS" default:"storm,thunderstorm,hurricane,tornado,heavy rain"`
	AlertRulesFile     string   `envconfig:"ALERT_RULES_FILE"`

	KBAllowedDomains []string `envconfig:"KB_ALLOWED_DOMAINS"`
	KBMaxBytesPage   int      `envconfig:"KB_MAX_BYTES_PER_PAGE" default:"1500000" validate:"gt=0"`
	EmbEndpoint      string   `envconfig:"EMB_ENDPOINT"`
	EmbAPIKey        string   `envconfig:"EMB_API_KEY"`
	EmbModel         string   `envconfig:"EMB_MODEL"`
}

// LLMConfigured reports whether a real structured-generation backend can be used.
// Gemini has a default endpoint and model; an OpenAI-compatible backend needs both.
func (c AppConfig) LLMConfigured() bool {
	switch c.LLMProvider {
	case "gemini":
		return c.LLMAPIKey != ""
	case "openai":
		return c.LLMAPIKey != "" && c.LLMEndpoint != "" && c.LLMModel != ""
	default:
		return false
	}
}

// Load reads .env (if any) and the process environment.
func Load() (AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("[cfg] No .env file found or error loading: %v", err)
	}
	return load()
}

func load() (AppConfig, error) {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("process env: %w", err)
	}
	for i, k := range cfg.StormKeywords {
		cfg.StormKeywords[i] = strings.TrimSpace(k)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return AppConfig{}, fmt.Errorf("validate config: %w", err)
	}
	if cfg.FrostThresholdC >= cfg.HeatwaveThresholdC {
		return AppConfig{}, fmt.Errorf("validate config: frost threshold %g must be below heatwave threshold %g",
			cfg.FrostThresholdC, cfg.HeatwaveThresholdC)
	}
	return cfg, nil
}

// String hides secrets so the config can be logged at startup.
func (c AppConfig) String() string {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "****"
	}
	return fmt.Sprintf("{port:%s env:%s db:%s llm:%s/%s key:%s weather_key:%s cache:%s frost:%g heat:%g rules:%q}",
		c.Port, c.AppEnv, c.DBPath, c.LLMProvider, c.LLMModel, mask(c.LLMAPIKey), mask(c.WeatherAPIKey),
		c.WeatherCacheTTL, c.FrostThresholdC, c.HeatwaveThresholdC, c.AlertRulesFile)
}
