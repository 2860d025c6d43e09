package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studytrack/studytrack-client/config"
	"github.com/studytrack/studytrack-client/internal/adapters/filestore"
	redisadapter "github.com/studytrack/studytrack-client/internal/adapters/redis"
	authmocks "github.com/studytrack/studytrack-client/internal/mocks/auth"
	"github.com/studytrack/studytrack-client/internal/ports"
	"github.com/studytrack/studytrack-client/internal/service"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBuildCredentialStore_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "studytrack", "credential")
	store, closeFn, err := BuildCredentialStore(context.Background(), CredentialStoreConfig{
		Credentials: config.CredentialConfig{Store: config.StoreKindFile, File: path},
		Logger:      discardLogger(),
	})
	require.NoError(t, err)
	require.NotNil(t, closeFn)
	t.Cleanup(func() { _ = closeFn() })

	fs, ok := store.(*filestore.CredentialStore)
	require.True(t, ok)
	assert.Equal(t, path, fs.Path())

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "tok"))
	got, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", got)
}

func TestBuildCredentialStore_Redis(t *testing.T) {
	mr := miniredis.RunT(t)

	store, closeFn, err := BuildCredentialStore(context.Background(), CredentialStoreConfig{
		Credentials: config.CredentialConfig{Store: config.StoreKindRedis, RedisKey: "test:cred"},
		Redis:       config.RedisConfig{URI: mr.Addr()},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeFn() })

	_, ok := store.(*redisadapter.CredentialStore)
	require.True(t, ok)

	require.NoError(t, store.Set(context.Background(), "tok"))
	v, err := mr.Get("test:cred")
	require.NoError(t, err)
	assert.Equal(t, "tok", v)
	assert.Zero(t, mr.TTL("test:cred"))
}

func TestBuildCredentialStore_RedisTTL(t *testing.T) {
	mr := miniredis.RunT(t)

	store, closeFn, err := BuildCredentialStore(context.Background(), CredentialStoreConfig{
		Credentials: config.CredentialConfig{Store: config.StoreKindRedis, RedisKey: "test:cred", RedisTTL: time.Hour},
		Redis:       config.RedisConfig{URI: mr.Addr()},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeFn() })

	require.NoError(t, store.Set(context.Background(), "tok"))
	assert.Equal(t, time.Hour, mr.TTL("test:cred"))

	mr.FastForward(time.Hour + time.Second)
	_, err = store.Get(context.Background())
	assert.ErrorIs(t, err, ports.ErrNoCredential)
}

func TestBuildCredentialStore_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	store, closeFn, err := BuildCredentialStore(context.Background(), CredentialStoreConfig{
		Credentials: config.CredentialConfig{Store: config.StoreKindRedis},
		Redis:       config.RedisConfig{URI: addr},
	})
	require.Error(t, err)
	assert.Nil(t, store)
	require.NotNil(t, closeFn)
	assert.NoError(t, closeFn())
}

func TestBuildCredentialStore_Unsupported(t *testing.T) {
	_, _, err := BuildCredentialStore(context.Background(), CredentialStoreConfig{
		Credentials: config.CredentialConfig{Store: config.StoreKind("memory")},
	})
	require.Error(t, err)
}

func TestBuildAPIClient(t *testing.T) {
	client, err := BuildAPIClient(APIClientConfig{API: config.APIConfig{BaseURL: "https://api.example.com"}})
	require.NoError(t, err)
	assert.Equal(t, "api.example.com", client.BaseURL().Host)

	_, err = BuildAPIClient(APIClientConfig{API: config.APIConfig{BaseURL: "ftp://example.com"}})
	require.Error(t, err)
}

func TestRouteTable(t *testing.T) {
	routes := RouteTable(config.RoutesConfig{Entry: "/signin", Landing: "/home"})
	assert.Equal(t, "/signin", routes.Entry)
	assert.Equal(t, "/home", routes.Landing)
	assert.Equal(t, "/admin", routes.AdminLanding)
	assert.Equal(t, "/admin/login", routes.AdminLogin)
}

func TestBuildSessionController(t *testing.T) {
	_, err := BuildSessionController(SessionControllerConfig{})
	require.Error(t, err)

	cfg := &config.AppConfig{
		Routes:  config.RoutesConfig{Entry: "/signin", Landing: "/home", AdminLanding: "/admin"},
		Session: config.SessionConfig{ResolveTimeout: 0},
	}
	ctrl, err := BuildSessionController(SessionControllerConfig{
		Config: cfg,
		Ports: service.SessionPorts{
			Store: authmocks.NewMemoryCredentialStore(""),
			API:   authmocks.NewStubAuthAPI(),
		},
		Logger: discardLogger(),
	})
	require.NoError(t, err)
	assert.Equal(t, "/signin", ctrl.Routes().Entry)
	assert.True(t, ctrl.Loading())

	user, err := ctrl.ResolveSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.False(t, ctrl.Loading())
}

func TestBuildSessionController_RequiresPorts(t *testing.T) {
	_, err := BuildSessionController(SessionControllerConfig{
		Config: &config.AppConfig{},
		Ports:  service.SessionPorts{API: ports.AuthAPI(authmocks.NewStubAuthAPI())},
	})
	require.Error(t, err)
}
