package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/studytrack/studytrack-client/config"
	"github.com/studytrack/studytrack-client/internal/adapters/apiclient"
	"github.com/studytrack/studytrack-client/internal/adapters/filestore"
	redisadapter "github.com/studytrack/studytrack-client/internal/adapters/redis"
	domainauth "github.com/studytrack/studytrack-client/internal/domain/auth"
	"github.com/studytrack/studytrack-client/internal/ports"
	"github.com/studytrack/studytrack-client/internal/service"
)

// CredentialStoreConfig contains configuration for the credential store.
type CredentialStoreConfig struct {
	Credentials config.CredentialConfig
	Redis       config.RedisConfig
	Logger      *slog.Logger
}

// BuildCredentialStore creates the configured credential store. The returned close
// function releases the backing connection and is never nil.
//
//nolint:ireturn // the store backend is chosen at runtime.
func BuildCredentialStore(ctx context.Context, cfg CredentialStoreConfig) (ports.CredentialStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Credentials.Store {
	case config.StoreKindRedis:
		client, err := ConnectRedis(ctx, RedisClientConfig{Redis: cfg.Redis, Logger: cfg.Logger})
		if err != nil {
			return nil, noop, fmt.Errorf("connect credential redis: %w", err)
		}
		store := redisadapter.NewCredentialStore(client, redisadapter.CredentialStoreOptions{
			Key: cfg.Credentials.RedisKey,
			TTL: cfg.Credentials.RedisTTL,
		})
		return store, client.Close, nil

	case config.StoreKindFile, "":
		path := cfg.Credentials.File
		if path == "" {
			def, err := filestore.DefaultPath()
			if err != nil {
				return nil, noop, err
			}
			path = def
		}
		store, err := filestore.NewCredentialStore(path)
		if err != nil {
			return nil, noop, err
		}
		if cfg.Logger != nil {
			cfg.Logger.Debug("credential store ready", "kind", "file", "path", store.Path())
		}
		return store, noop, nil

	default:
		return nil, noop, fmt.Errorf("unsupported credential store %q", cfg.Credentials.Store)
	}
}

// APIClientConfig contains configuration for the StudyTrack API client.
type APIClientConfig struct {
	API    config.APIConfig
	Logger *slog.Logger
}

// BuildAPIClient creates the HTTP client for the auth endpoints.
func BuildAPIClient(cfg APIClientConfig) (*apiclient.Client, error) {
	client, err := apiclient.New(apiclient.Config{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		UserAgent: cfg.API.UserAgent,
		Logger:    cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build api client: %w", err)
	}
	return client, nil
}

// SessionControllerConfig contains configuration for the session controller.
type SessionControllerConfig struct {
	Config *config.AppConfig
	Ports  service.SessionPorts
	Logger *slog.Logger
}

// RouteTable applies the configured redirect targets to the default route classes.
func RouteTable(cfg config.RoutesConfig) domainauth.RouteTable {
	routes := domainauth.DefaultRoutes()
	if cfg.Entry != "" {
		routes.Entry = cfg.Entry
	}
	if cfg.Landing != "" {
		routes.Landing = cfg.Landing
	}
	if cfg.AdminLanding != "" {
		routes.AdminLanding = cfg.AdminLanding
	}
	return routes
}

// BuildSessionController wires the session controller from configuration and ports.
func BuildSessionController(cfg SessionControllerConfig) (*service.SessionController, error) {
	if cfg.Config == nil {
		return nil, errors.New("app config is required")
	}
	return service.NewSessionController(service.SessionControllerOptions{
		Ports: cfg.Ports,
		Config: service.SessionConfig{
			Routes:         RouteTable(cfg.Config.Routes),
			ResolveTimeout: cfg.Config.Session.ResolveTimeout,
		},
		Logger: cfg.Logger,
	})
}
