package config

import (
	"log/slog"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppConfig_Defaults(t *testing.T) {
	t.Setenv("NODE_ENV", "")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.False(t, cfg.IsDev)
	assert.Empty(t, cfg.LogLevel)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
	assert.Equal(t, "http://localhost:5000", cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, StoreKindFile, cfg.Credentials.Store)
	assert.Equal(t, "studytrack:credential", cfg.Credentials.RedisKey)
	assert.Zero(t, cfg.Credentials.RedisTTL)
	assert.Equal(t, "localhost:6379", cfg.Redis.URI)
	assert.Equal(t, 5*time.Second, cfg.Session.ResolveTimeout)
	assert.Equal(t, "/login", cfg.Routes.Entry)
	assert.Equal(t, "/dashboard", cfg.Routes.Landing)
	assert.Equal(t, "/admin", cfg.Routes.AdminLanding)
	assert.Equal(t, "127.0.0.1:0", cfg.OAuth.CallbackAddr)
	assert.Equal(t, "google", cfg.OAuth.Provider)
	assert.Equal(t, 2*time.Minute, cfg.OAuth.WaitTimeout)
}

func TestAppConfig_ParseEnv(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.example.com/")
	t.Setenv("API_TIMEOUT", "3s")
	t.Setenv("CREDENTIAL_STORE", "REDIS")
	t.Setenv("CREDENTIAL_REDIS_KEY", "custom:key")
	t.Setenv("CREDENTIAL_REDIS_TTL", "12h")
	t.Setenv("REDIS_URI", "redis://cache:6379/2")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("SESSION_RESOLVE_TIMEOUT", "750ms")
	t.Setenv("ROUTE_LANDING", "home/")
	t.Setenv("OAUTH_PROVIDER", " GitHub ")
	t.Setenv("LOG_LEVEL", "DEBUG")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.Equal(t, "https://api.example.com", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, StoreKindRedis, cfg.Credentials.Store)
	assert.Equal(t, "custom:key", cfg.Credentials.RedisKey)
	assert.Equal(t, 12*time.Hour, cfg.Credentials.RedisTTL)
	assert.Equal(t, "redis://cache:6379/2", cfg.Redis.URI)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, 750*time.Millisecond, cfg.Session.ResolveTimeout)
	assert.Equal(t, "/home", cfg.Routes.Landing)
	assert.Equal(t, "github", cfg.OAuth.Provider)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestAppConfig_InvalidStoreKind(t *testing.T) {
	t.Setenv("CREDENTIAL_STORE", "memory")

	var cfg AppConfig
	err := env.Parse(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid StoreKind")
}

func TestSessionConfig_Sanitize(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want time.Duration
	}{
		{0, 100 * time.Millisecond},
		{10 * time.Millisecond, 100 * time.Millisecond},
		{2 * time.Second, 2 * time.Second},
		{5 * time.Minute, 60 * time.Second},
	}
	for _, tt := range tests {
		s := SessionConfig{ResolveTimeout: tt.in}
		s.Sanitize()
		assert.Equal(t, tt.want, s.ResolveTimeout, "input %s", tt.in)
	}
}

func TestOAuthConfig_Sanitize(t *testing.T) {
	o := OAuthConfig{WaitTimeout: time.Second}
	o.Sanitize()
	assert.Equal(t, "127.0.0.1:0", o.CallbackAddr)
	assert.Equal(t, "google", o.Provider)
	assert.Equal(t, 10*time.Second, o.WaitTimeout)

	o = OAuthConfig{CallbackAddr: "127.0.0.1:4000", Provider: "github", WaitTimeout: time.Hour}
	o.Sanitize()
	assert.Equal(t, "127.0.0.1:4000", o.CallbackAddr)
	assert.Equal(t, 15*time.Minute, o.WaitTimeout)
}

func TestRoutesConfig_Sanitize(t *testing.T) {
	r := RoutesConfig{Entry: "  ", Landing: "/", AdminLanding: "admin/"}
	r.Sanitize()
	assert.Equal(t, "/login", r.Entry)
	assert.Equal(t, "/", r.Landing)
	assert.Equal(t, "/admin", r.AdminLanding)
}

func TestAppConfig_SlogLevel(t *testing.T) {
	tests := []struct {
		level string
		dev   bool
		want  slog.Level
	}{
		{"debug", false, slog.LevelDebug},
		{"info", true, slog.LevelInfo},
		{"warn", false, slog.LevelWarn},
		{"error", false, slog.LevelError},
		{"bogus", false, slog.LevelInfo},
		{"bogus", true, slog.LevelDebug},
		{"", false, slog.LevelInfo},
		{"", true, slog.LevelDebug},
	}
	for _, tt := range tests {
		c := AppConfig{LogLevel: tt.level, IsDev: tt.dev}
		assert.Equal(t, tt.want, c.SlogLevel(), "level %q dev %v", tt.level, tt.dev)
	}
}

func TestAppConfig_DetectDevMode(t *testing.T) {
	t.Setenv("NODE_ENV", "development")
	c := AppConfig{}
	c.Sanitize()
	assert.True(t, c.IsDev)
	assert.Equal(t, slog.LevelDebug, c.SlogLevel())
}
