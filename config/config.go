package config

import (
	"log/slog"
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - api.go: StudyTrack API client configuration
//   - credentials.go: Credential storage configuration
//   - database.go: Redis configuration
//   - session.go: Session controller, route table and OAuth loopback configuration
type AppConfig struct {
	// IsDev enables development behavior: text logs, and debug level unless LOG_LEVEL is set.
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// LogLevel is one of debug, info, warn, error. Empty picks info, or debug in development.
	LogLevel string `env:"LOG_LEVEL"`

	API         APIConfig        `envPrefix:"API_"`
	Credentials CredentialConfig `envPrefix:"CREDENTIAL_"`
	Redis       RedisConfig      `envPrefix:"REDIS_"`
	Session     SessionConfig    `envPrefix:"SESSION_"`
	Routes      RoutesConfig     `envPrefix:"ROUTE_"`
	OAuth       OAuthConfig      `envPrefix:"OAUTH_"`
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.API.Sanitize()
	c.Credentials.Sanitize()
	c.Session.Sanitize()
	c.Routes.Sanitize()
	c.OAuth.Sanitize()

	c.detectDevMode()
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
}

// SlogLevel maps LogLevel to a slog.Level. Empty or unknown values fall back to info,
// or debug in development mode.
func (c *AppConfig) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "info":
		return slog.LevelInfo
	}
	if c.IsDev {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// NODE_ENV is checked as a fallback (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}
