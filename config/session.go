package config

import (
	"strings"
	"time"
)

const (
	minResolveTimeout = 100 * time.Millisecond
	maxResolveTimeout = 60 * time.Second

	minOAuthWait = 10 * time.Second
	maxOAuthWait = 15 * time.Minute
)

// SessionConfig contains session controller configuration.
type SessionConfig struct {
	// ResolveTimeout bounds a single "who am I" resolution.
	ResolveTimeout time.Duration `env:"RESOLVE_TIMEOUT" envDefault:"5s"`
}

// Sanitize clamps ResolveTimeout to [100ms, 60s].
func (s *SessionConfig) Sanitize() {
	if s.ResolveTimeout < minResolveTimeout {
		s.ResolveTimeout = minResolveTimeout
	}
	if s.ResolveTimeout > maxResolveTimeout {
		s.ResolveTimeout = maxResolveTimeout
	}
}

// RoutesConfig overrides the redirect targets of the route table.
type RoutesConfig struct {
	Entry        string `env:"ENTRY"         envDefault:"/login"`
	Landing      string `env:"LANDING"       envDefault:"/dashboard"`
	AdminLanding string `env:"ADMIN_LANDING" envDefault:"/admin"`
}

// Sanitize normalizes route targets to absolute paths, restoring defaults when blank.
func (r *RoutesConfig) Sanitize() {
	r.Entry = sanitizeRoute(r.Entry, "/login")
	r.Landing = sanitizeRoute(r.Landing, "/dashboard")
	r.AdminLanding = sanitizeRoute(r.AdminLanding, "/admin")
}

func sanitizeRoute(v, def string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return def
	}
	if !strings.HasPrefix(v, "/") {
		v = "/" + v
	}
	if len(v) > 1 {
		v = strings.TrimRight(v, "/")
	}
	return v
}

// OAuthConfig contains settings for the OAuth loopback login flow.
type OAuthConfig struct {
	// CallbackAddr is where the loopback landing server listens.
	CallbackAddr string `env:"CALLBACK_ADDR" envDefault:"127.0.0.1:0"`

	// Provider is the social login provider segment of /api/auth/{provider}.
	Provider string `env:"PROVIDER" envDefault:"google"`

	// WaitTimeout bounds how long the CLI waits for the browser to come back.
	WaitTimeout time.Duration `env:"WAIT_TIMEOUT" envDefault:"2m"`
}

// Sanitize applies guardrails to OAuth configuration values.
func (o *OAuthConfig) Sanitize() {
	if strings.TrimSpace(o.CallbackAddr) == "" {
		o.CallbackAddr = "127.0.0.1:0"
	}
	o.Provider = strings.ToLower(strings.TrimSpace(o.Provider))
	if o.Provider == "" {
		o.Provider = "google"
	}
	if o.WaitTimeout < minOAuthWait {
		o.WaitTimeout = minOAuthWait
	}
	if o.WaitTimeout > maxOAuthWait {
		o.WaitTimeout = maxOAuthWait
	}
}
