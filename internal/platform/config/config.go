// Copyright (c) 2026 Orvia. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (store, mailer) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the Orvia API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// StorePath is the filesystem path of the durable JSON document.
	StorePath string `env:"STORE_PATH" envDefault:"./data/orvia.json"`

	// CatalogPath is the filesystem path of the plan catalog file.
	CatalogPath string `env:"CATALOG_PATH" envDefault:"./data/plans.yaml"`

	// SessionSecret keys the HMAC fingerprint of session tokens.
	// A storage leak without this secret yields no usable credentials.
	SessionSecret string `env:"SESSION_SECRET,required"`

	// SessionTTL is the fixed lifetime of an issued session (not renewed by use).
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"720h"`

	// One-time code lifecycle
	OTPTTL            time.Duration `env:"OTP_TTL"             envDefault:"10m"`
	OTPMaxAttempts    int           `env:"OTP_MAX_ATTEMPTS"    envDefault:"5"`
	OTPResendCooldown time.Duration `env:"OTP_RESEND_COOLDOWN" envDefault:"60s"`

	// AdminEmails is the allow-list granting order-management privileges.
	AdminEmails []string `env:"ADMIN_EMAILS" envSeparator:","`

	// Outbound mail transport. Driver "log" writes codes to the process log
	// instead of dialing SMTP — development only.
	MailDriver string `env:"MAIL_DRIVER" envDefault:"log"`
	SMTPHost   string `env:"SMTP_HOST"`
	SMTPPort   int    `env:"SMTP_PORT"  envDefault:"587"`
	SMTPUser   string `env:"SMTP_USER"`
	SMTPPass   string `env:"SMTP_PASS"`
	MailFrom   string `env:"MAIL_FROM"  envDefault:"no-reply@orvia.app"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// # Administrator Allow-List

// IsAdmin reports whether the given email belongs to the administrator
// allow-list. Comparison is case-insensitive on the normalized address.
//
// This is the pure membership function injected into the auth service; no
// role hierarchy exists behind it.
func (c *Config) IsAdmin(email string) bool {
	needle := strings.ToLower(strings.TrimSpace(email))
	if needle == "" {
		return false
	}
	for _, admin := range c.AdminEmails {
		if strings.ToLower(strings.TrimSpace(admin)) == needle {
			return true
		}
	}
	return false
}
