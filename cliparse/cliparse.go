// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Port         int    `env:"PORT" env-default:"3318"`
	DatabaseURL  string `env:"DATABASE_URL"`
	DatabaseType string `env:"DATABASE_TYPE" env-default:"sqlite"`

	// Secret used to verify caller identity tokens
	JWTSecret string `env:"JWT_SECRET"`

	// Policy cap for a single grant, in cents
	MaxGrantAmountCents int64 `env:"MAX_GRANT_AMOUNT_CENTS" env-default:"500000"`

	// Collaborators; empty URLs select the in-process implementations
	PaymentsURL         string        `env:"PAYMENTS_URL"`
	ContactsURL         string        `env:"CONTACTS_URL"`
	ContactsCacheSize   int           `env:"CONTACTS_CACHE_SIZE" env-default:"1024"`
	CollaboratorTimeout time.Duration `env:"COLLABORATOR_TIMEOUT" env-default:"10s"`

	LogLevel string `env:"LOG_LEVEL" env-default:"info"`
}

// LoadDotEnv loads variables from the given .env files (default ".env").
// A missing file is not an error.
func LoadDotEnv(paths ...string) error {
	err := godotenv.Load(paths...)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// ParseFlags reads the environment, then lets CLI flags override it
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to read environment: %w", err)
	}

	fs := flag.NewFlagSet("microgrants", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", cfg.Port, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", cfg.DatabaseURL, "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", cfg.DatabaseType, "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "JWT signing secret (prefer env)")

	fs.Int64Var(&cfg.MaxGrantAmountCents, "max-amount", cfg.MaxGrantAmountCents, "Maximum grant amount in cents")
	fs.StringVar(&cfg.PaymentsURL, "payments-url", cfg.PaymentsURL, "Payment service base URL")
	fs.StringVar(&cfg.ContactsURL, "contacts-url", cfg.ContactsURL, "Contact identity service base URL")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.Port <= 0 {
		return Config{}, errors.New("invalid port")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	// Secrets - MUST be provided
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET required")
	}

	if cfg.MaxGrantAmountCents <= 0 {
		return Config{}, errors.New("MAX_GRANT_AMOUNT_CENTS must be positive")
	}

	return cfg, nil
}
