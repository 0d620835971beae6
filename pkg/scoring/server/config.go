package server

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ErrPrimaryKeyRequired is returned when auth is enabled without a primary key.
var ErrPrimaryKeyRequired = errors.New("auth is enabled but MSAIL_PRIMARY_KEY is not set")

// ErrTLSFilesIncomplete is returned when only one of the TLS cert and key is set.
var ErrTLSFilesIncomplete = errors.New("TLS requires both MSAIL_TLS_CERT and MSAIL_TLS_KEY")

// Config holds the scoring server settings, populated from the environment.
type Config struct {
	// Port is the TCP port the server listens on.
	Port int `env:"MSAIL_PORT" envDefault:"8080"`

	// ModelPath is the model artifact handed to the scoring script.
	ModelPath string `env:"MSAIL_MODEL"`

	// ScriptPath is the scoring script to load.
	ScriptPath string `env:"MSAIL_SCRIPT"`

	// AuthEnabled requires a key on scoring requests when true.
	AuthEnabled bool `env:"MSAIL_AUTH_ENABLED" envDefault:"false"`

	// PrimaryKey is the first accepted key.
	PrimaryKey string `env:"MSAIL_PRIMARY_KEY"`

	// SecondaryKey is the second accepted key, kept valid across rotations.
	SecondaryKey string `env:"MSAIL_SECONDARY_KEY"`

	// TLSCertFile and TLSKeyFile enable TLS serving when both are set.
	TLSCertFile string `env:"MSAIL_TLS_CERT"`
	TLSKeyFile  string `env:"MSAIL_TLS_KEY"`
}

// LoadConfig parses the server configuration from environment variables.
func LoadConfig() (Config, error) {
	var config Config

	err := env.Parse(&config)
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}

	err = config.Validate()
	if err != nil {
		return Config{}, err
	}

	return config, nil
}

// Validate checks the configuration for inconsistent settings.
func (c Config) Validate() error {
	if c.AuthEnabled && c.PrimaryKey == "" {
		return ErrPrimaryKeyRequired
	}

	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		return ErrTLSFilesIncomplete
	}

	return nil
}

// TLSEnabled reports whether the server should serve TLS.
func (c Config) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}
