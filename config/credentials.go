package config

import (
	"fmt"
	"strings"
	"time"
)

// StoreKind selects where the bearer credential is persisted.
type StoreKind string

const (
	// StoreKindFile keeps the credential in a 0600 file under the user config dir.
	StoreKindFile StoreKind = "file"
	// StoreKindRedis keeps the credential under a Redis key.
	StoreKindRedis StoreKind = "redis"
)

// UnmarshalText implements encoding.TextUnmarshaler for StoreKind.
func (k *StoreKind) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "file", "redis":
		*k = StoreKind(v)
		return nil
	default:
		return fmt.Errorf("invalid StoreKind: %q (valid options: file, redis)", v)
	}
}

// CredentialConfig contains credential storage configuration.
type CredentialConfig struct {
	// Store determines which credential store backend to use.
	Store StoreKind `env:"STORE" envDefault:"file"`

	// File overrides the credential file path (Store=file).
	// Empty means $XDG_CONFIG_HOME/studytrack/credential.
	File string `env:"FILE"`

	// RedisKey is the key holding the credential (Store=redis).
	RedisKey string `env:"REDIS_KEY" envDefault:"studytrack:credential"`

	// RedisTTL expires the stored credential (Store=redis). Zero keeps it until logout.
	RedisTTL time.Duration `env:"REDIS_TTL" envDefault:"0s"`
}

// Sanitize applies guardrails to credential configuration values.
func (c *CredentialConfig) Sanitize() {
	c.File = strings.TrimSpace(c.File)
	if strings.TrimSpace(c.RedisKey) == "" {
		c.RedisKey = "studytrack:credential"
	}
	if c.RedisTTL < 0 {
		c.RedisTTL = 0
	}
}
