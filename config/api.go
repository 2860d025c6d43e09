package config

import (
	"strings"
	"time"
)

const (
	minAPITimeout = time.Second
	maxAPITimeout = 2 * time.Minute
)

// APIConfig contains settings for the StudyTrack API client.
type APIConfig struct {
	// BaseURL is the API origin; "/api/auth/..." paths are resolved against it.
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:5000"`

	// Timeout bounds each HTTP request.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`

	// UserAgent is sent with every request.
	UserAgent string `env:"USER_AGENT" envDefault:"studytrack-cli"`
}

// Sanitize applies guardrails to API client configuration values.
func (a *APIConfig) Sanitize() {
	a.BaseURL = strings.TrimRight(strings.TrimSpace(a.BaseURL), "/")
	if a.Timeout < minAPITimeout {
		a.Timeout = minAPITimeout
	}
	if a.Timeout > maxAPITimeout {
		a.Timeout = maxAPITimeout
	}
	if strings.TrimSpace(a.UserAgent) == "" {
		a.UserAgent = "studytrack-cli"
	}
}
