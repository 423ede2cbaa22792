// Package config loads application configuration from environment
// variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration
type Config struct {
	Server Server
	Store  Store
	Ticket Ticket
	Admin  Admin
	Clans  Clans
}

// Server holds HTTP server settings
type Server struct {
	Port         string        `env:"SERVER_PORT" envDefault:"8080"`
	Env          string        `env:"SERVER_ENV" envDefault:"development"`
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"15s"`
}

// Store selects and configures the persistence backend
type Store struct {
	// Backend is "memory" or "redis".
	Backend string `env:"STORE_BACKEND" envDefault:"memory"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
}

// Ticket holds ticket verification settings
type Ticket struct {
	// RPCNKeyPath points at the emulator network's ECDSA public key PEM.
	RPCNKeyPath string `env:"TICKET_RPCN_KEY_PATH" envDefault:"./keys/rpcn.pem"`
}

// Admin holds admin surface token settings
type Admin struct {
	TokenSecret    string        `env:"ADMIN_TOKEN_SECRET"`
	TokenIssuer    string        `env:"ADMIN_TOKEN_ISSUER" envDefault:"clans"`
	TokenLifetime  time.Duration `env:"ADMIN_TOKEN_LIFETIME" envDefault:"24h"`
	RateLimitRPS   float64       `env:"ADMIN_RATE_LIMIT_RPS" envDefault:"5"`
	RateLimitBurst int           `env:"ADMIN_RATE_LIMIT_BURST" envDefault:"10"`
}

// Clans holds domain tunables
type Clans struct {
	// CreateEvery throttles clan creation per player. Zero disables the
	// limiter.
	CreateEvery time.Duration `env:"CLAN_CREATE_EVERY" envDefault:"1m"`

	// SweepInterval is how often expired announcements are purged.
	SweepInterval time.Duration `env:"ANNOUNCEMENT_SWEEP_INTERVAL" envDefault:"10m"`
}

// Load reads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Validate checks that all required configuration values are present and valid.
// It returns an error describing all validation failures, or nil if valid.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port == "" {
		errs = append(errs, errors.New("SERVER_PORT is required"))
	}
	if c.Server.Env != "development" && c.Server.Env != "production" && c.Server.Env != "test" {
		errs = append(errs, fmt.Errorf("SERVER_ENV must be 'development', 'production', or 'test', got '%s'", c.Server.Env))
	}

	switch c.Store.Backend {
	case "memory":
	case "redis":
		if c.Store.RedisAddr == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required when STORE_BACKEND is 'redis'"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_BACKEND must be 'memory' or 'redis', got '%s'", c.Store.Backend))
	}

	if c.Ticket.RPCNKeyPath == "" {
		errs = append(errs, errors.New("TICKET_RPCN_KEY_PATH is required"))
	}

	// The admin surface is disabled without a secret; that is an error
	// only in production.
	if c.IsProduction() && c.Admin.TokenSecret == "" {
		errs = append(errs, errors.New("ADMIN_TOKEN_SECRET is required in production"))
	}
	if c.Admin.TokenLifetime <= 0 {
		errs = append(errs, errors.New("ADMIN_TOKEN_LIFETIME must be positive"))
	}

	if c.Clans.CreateEvery < 0 {
		errs = append(errs, errors.New("CLAN_CREATE_EVERY must not be negative"))
	}
	if c.Clans.SweepInterval <= 0 {
		errs = append(errs, errors.New("ANNOUNCEMENT_SWEEP_INTERVAL must be positive"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
