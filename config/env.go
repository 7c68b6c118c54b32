package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Env holds the XCKIT_* environment overrides. Unset variables leave the
// pointer fields nil.
type Env struct {
	Provider           string         `env:"XCKIT_PROVIDER"`
	Model              string         `env:"XCKIT_MODEL"`
	APIKey             string         `env:"XCKIT_API_KEY"`
	BaseURL            string         `env:"XCKIT_BASE_URL"`
	Proxy              string         `env:"XCKIT_PROXY"`
	Timeout            *time.Duration `env:"XCKIT_TIMEOUT"`
	MaxRetries         *int           `env:"XCKIT_MAX_RETRIES"`
	CheckpointInterval *int           `env:"XCKIT_CHECKPOINT_INTERVAL"`
	Languages          []string       `env:"XCKIT_LANGUAGES" envSeparator:","`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadEnv parses the XCKIT_* variables.
func LoadEnv() (Env, error) {
	var e Env
	if err := ParseEnv(&e); err != nil {
		return Env{}, err
	}
	return e, nil
}
