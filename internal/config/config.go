package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"

	"habitquest/internal/storage"
)

var validate = validator.New()

// Config is read from the environment at startup.
type Config struct {
	DBPath    string `env:"HQ_DB_PATH"`
	PlayerID  int64  `env:"HQ_PLAYER_ID" envDefault:"1" validate:"min=1"`
	HTTPAddr  string `env:"HQ_HTTP_ADDR" envDefault:":8080" validate:"required"`
	LogLevel  string `env:"HQ_LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	LogFormat string `env:"HQ_LOG_FORMAT" envDefault:"text" validate:"oneof=text json"`
	Timezone  string `env:"HQ_TIMEZONE" envDefault:"UTC"`

	// ShutdownGrace bounds how long in-flight requests may run after a stop signal.
	ShutdownGrace time.Duration `env:"HQ_SHUTDOWN_GRACE" envDefault:"10s" validate:"min=0"`

	HPPenaltyPercent int `env:"HQ_HP_PENALTY_PERCENT" envDefault:"20" validate:"min=0,max=100"`

	GeminiAPIKey  string `env:"GEMINI_API_KEY"`
	GeminiModel   string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	MaxVariations int    `env:"HQ_MAX_VARIATIONS" envDefault:"4" validate:"min=1,max=10"`
}

// Load parses the environment, fills the database path default and validates
// the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))

	if strings.TrimSpace(cfg.DBPath) == "" {
		p, err := storage.DefaultDBPath()
		if err != nil {
			return Config{}, err
		}
		cfg.DBPath = p
	}
	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	if _, err := cfg.Location(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Location resolves Timezone, which defines where a day starts and ends.
func (c Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.Timezone)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return loc, nil
}
