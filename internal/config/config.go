package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"

	defaultOpenAIModel = "gpt-4.1-mini"
	defaultOllamaModel = "llama3.1:8b"
)

type Config struct {
	Token        string        `env:"TOKEN,required,notEmpty"`
	AllowedUsers []int64       `env:"ALLOWED_USERS"`
	DBPath       string        `env:"DB_PATH"                 envDefault:"db.sqlite"`
	AIProvider   string        `env:"AI_PROVIDER"             envDefault:"openai"`
	OpenAIAPIKey string        `env:"OPENAI_API_KEY"`
	AIModel      string        `env:"AI_MODEL"`
	AITimeout    time.Duration `env:"AI_TIMEOUT"              envDefault:"90s"`
	City         string        `env:"CITY"                    envDefault:"Nashville, Tennessee"`
	SessionTTL   time.Duration `env:"SESSION_TTL"             envDefault:"24h"`
	HealthAddr   string        `env:"HEALTH_ADDR"`
	LogLevel     slog.Level    `env:"LOG_LEVEL"               envDefault:"info"`
}

// Load parses the environment and validates the result. Any error is fatal
// for the caller.
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err = cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	c.AIProvider = strings.ToLower(strings.TrimSpace(c.AIProvider))
	c.OpenAIAPIKey = strings.TrimSpace(c.OpenAIAPIKey)
	c.City = strings.TrimSpace(c.City)

	var errs []error

	switch c.AIProvider {
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required for the openai provider"))
		}
	case ProviderOllama:
	default:
		errs = append(errs, fmt.Errorf("unknown AI_PROVIDER %q (valid: openai, ollama)", c.AIProvider))
	}

	if c.City == "" {
		errs = append(errs, errors.New("CITY must not be empty"))
	}

	if c.AITimeout <= 0 {
		errs = append(errs, errors.New("AI_TIMEOUT must be positive"))
	}

	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}

	return errors.Join(errs...)
}

// Model returns the configured model name or the provider default.
func (c Config) Model() string {
	if model := strings.TrimSpace(c.AIModel); model != "" {
		return model
	}

	if c.AIProvider == ProviderOllama {
		return defaultOllamaModel
	}

	return defaultOpenAIModel
}
