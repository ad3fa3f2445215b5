// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Functions that perform I/O accept context.Context as the first parameter.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" json:"log_level"`

	// LogFormat selects the log handler: text, json, console.
	LogFormat string `koanf:"log_format" json:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":5000".
	Addr string `koanf:"addr" json:"addr"`

	// TablePath points at a JSON or YAML conversion table. Empty means the
	// table embedded in the binary.
	TablePath string `koanf:"table_path" json:"table_path"`

	// ReadTimeoutMS and WriteTimeoutMS bound HTTP request handling.
	ReadTimeoutMS  int `koanf:"read_timeout_ms" json:"read_timeout_ms"`
	WriteTimeoutMS int `koanf:"write_timeout_ms" json:"write_timeout_ms"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		LogFormat:      "text",
		Addr:           ":5000",
		TablePath:      "",
		ReadTimeoutMS:  10_000,
		WriteTimeoutMS: 10_000,
	}
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Addr, validation.Required),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "warning", "error")),
		validation.Field(&c.LogFormat, validation.In("text", "json", "console")),
		validation.Field(&c.ReadTimeoutMS, validation.Required, validation.Min(1)),
		validation.Field(&c.WriteTimeoutMS, validation.Required, validation.Min(1)),
	)
}
