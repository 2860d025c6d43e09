package redis

// Package redis provides Redis-based adapters for the studytrack client.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/studytrack/studytrack-client/internal/ports"
)

// DefaultCredentialKey is the key used when none is configured.
const DefaultCredentialKey = "studytrack:credential"

// CredentialStore keeps the bearer token under a single Redis key.
// A zero TTL stores the token without expiry.
type CredentialStore struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
}

// CredentialStoreOptions groups settings for NewCredentialStore.
type CredentialStoreOptions struct {
	Key string
	TTL time.Duration
}

// NewCredentialStore creates a new Redis-based credential store.
func NewCredentialStore(client redis.UniversalClient, opts CredentialStoreOptions) *CredentialStore {
	key := opts.Key
	if key == "" {
		key = DefaultCredentialKey
	}
	ttl := opts.TTL
	if ttl < 0 {
		ttl = 0
	}
	return &CredentialStore{
		client: client,
		key:    key,
		ttl:    ttl,
	}
}

func (s *CredentialStore) Get(ctx context.Context) (string, error) {
	token, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ports.ErrNoCredential
		}
		return "", fmt.Errorf("redis get: %w", err)
	}
	if token == "" {
		return "", ports.ErrNoCredential
	}
	return token, nil
}

func (s *CredentialStore) Set(ctx context.Context, token string) error {
	if token == "" {
		return errors.New("credential cannot be empty")
	}
	if err := s.client.Set(ctx, s.key, token, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *CredentialStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
