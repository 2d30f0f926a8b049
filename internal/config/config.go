// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// GitHub holds the OAuth application credentials. Leaving ClientID empty
// disables the GitHub sign-in routes; everything else keeps working.
type GitHub struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	CallbackURL  string `env:"CALLBACK_URL"`
}

// Config is the full server configuration, populated from environment
// variables with the defaults shown in the tags.
type Config struct {
	Port      int           `env:"PORT" envDefault:"8080"`
	DataDir   string        `env:"DATA_DIR" envDefault:"data"`
	UploadDir string        `env:"UPLOAD_DIR" envDefault:"uploads"`
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"1h"`
	GitHub    GitHub        `envPrefix:"GITHUB_"`
}

// New reads the configuration from the environment. JWTSecret has no
// default on purpose: running with a guessable secret is worse than not
// starting at all.
func New() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("config: JWT_SECRET must be set")
	}
	if cfg.GitHub.ClientID != "" && cfg.GitHub.CallbackURL == "" {
		cfg.GitHub.CallbackURL = fmt.Sprintf("http://localhost:%d/auth/github/callback", cfg.Port)
	}
	return cfg, nil
}
