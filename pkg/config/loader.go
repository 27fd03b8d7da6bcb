package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load parses environment variables into the provided struct and validates
// the result. The struct should use `env` tags for the mapping and may use
// `validate` tags for invariants.
//
// Example:
//
//	type Config struct {
//	    Port     int    `env:"HTTP_PORT" envDefault:"8080" validate:"min=1,max=65535"`
//	    LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
//	}
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}
