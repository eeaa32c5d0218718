// Package config loads and stores the permalink TOML config file.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the user's permalink configuration.
// Schema changes require a version bump, see internal/version/version.go.
type Config struct {
	PermalinkSchema string       `toml:"permalink_schema" json:"permalink_schema"`
	Server          ServerConfig `toml:"server" json:"server"`
	Log             LogConfig    `toml:"log" json:"log"`
	Batch           BatchConfig  `toml:"batch" json:"batch"`
	Editor          string       `toml:"editor,omitempty" json:"editor,omitempty"` // Used by `config edit`; falls back to $EDITOR
}

// ServerConfig configures `permalink serve`.
type ServerConfig struct {
	Port                   int    `toml:"port" json:"port" validate:"min=1,max=65535"`
	ReadTimeoutSeconds     int    `toml:"read_timeout_seconds" json:"read_timeout_seconds" validate:"min=1"`
	WriteTimeoutSeconds    int    `toml:"write_timeout_seconds" json:"write_timeout_seconds" validate:"min=1"`
	ShutdownTimeoutSeconds int    `toml:"shutdown_timeout_seconds" json:"shutdown_timeout_seconds" validate:"min=1"`
	AllowedOrigin          string `toml:"allowed_origin,omitempty" json:"allowed_origin,omitempty" validate:"omitempty,url"` // Extra browser origin for CORS and WebSocket; same-host is always allowed
}

type LogConfig struct {
	Level  string `toml:"level" json:"level" validate:"oneof=debug info warn error"`
	Pretty bool   `toml:"pretty" json:"pretty"`
}

type BatchConfig struct {
	Concurrency int `toml:"concurrency" json:"concurrency" validate:"min=1,max=256"`
}

const (
	DefaultPort        = 5260
	DefaultConcurrency = 8
)

// Default returns the configuration used when no file exists. Fields absent
// from a file keep these values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:                   DefaultPort,
			ReadTimeoutSeconds:     10,
			WriteTimeoutSeconds:    10,
			ShutdownTimeoutSeconds: 5,
		},
		Log: LogConfig{
			Level: "info",
		},
		Batch: BatchConfig{
			Concurrency: DefaultConcurrency,
		},
	}
}

func (s ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutSeconds) * time.Second
}

func (s ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutSeconds) * time.Second
}

func (s ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(s.ShutdownTimeoutSeconds) * time.Second
}

var validate = validator.New()

// Validate checks field ranges and enumerations.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
