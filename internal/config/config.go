package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Default allowed origins for development
var defaultOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
}

type Config struct {
	Port           string   `env:"PORT" envDefault:"3000"`
	DatabaseDriver string   `env:"DATABASE_DRIVER" envDefault:"postgres"`
	DatabaseURL    string   `env:"DATABASE_URL,notEmpty"`
	JWTSecret      string   `env:"JWT_SECRET"`
	ClientURL      string   `env:"CLIENT_URL"`
	ExtraOrigins   []string `env:"ALLOWED_ORIGINS" envSeparator:","`

	GitHub GitHubConfig
}

type GitHubConfig struct {
	ClientID     string `env:"GITHUB_CLIENT_ID"`
	ClientSecret string `env:"GITHUB_CLIENT_SECRET"`
	RedirectURI  string `env:"GITHUB_REDIRECT_URI"`
}

// Enabled reports whether every value the OAuth flow needs is present.
func (g GitHubConfig) Enabled() bool {
	return g.ClientID != "" && g.ClientSecret != "" && g.RedirectURI != ""
}

// Load reads .env (if any) and then parses the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	return cfg, nil
}

// AllowedOrigins returns the development origins plus CLIENT_URL and ALLOWED_ORIGINS.
func (c Config) AllowedOrigins() []string {
	origins := make([]string, len(defaultOrigins))
	copy(origins, defaultOrigins)

	if c.ClientURL != "" {
		origins = append(origins, c.ClientURL)
	}

	for _, origin := range c.ExtraOrigins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}

	return origins
}
