package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	domainauth "github.com/studytrack/studytrack-client/internal/domain/auth"
	apperrors "github.com/studytrack/studytrack-client/internal/errors"
	"github.com/studytrack/studytrack-client/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Config{BaseURL: srv.URL, Timeout: 2 * time.Second})
	require.NoError(t, err)
	return c
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)

	_, err = New(Config{BaseURL: "ftp://example.com"})
	assert.Error(t, err)

	c, err := New(Config{BaseURL: "https://api.example.com/"})
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", c.BaseURL().String())
}

func TestClient_CurrentUser_Wrapped(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, mePath, r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"user":{"_id":"u1","name":"Amy","email":"amy@example.com","role":"Admin","createdAt":"2024-03-01T10:00:00Z"}}`))
	})

	user, err := c.CurrentUser(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "Amy", user.Name)
	assert.Equal(t, domainauth.RoleAdmin, user.Role)
	assert.True(t, user.IsAdmin())
	assert.Equal(t, 2024, user.CreatedAt.Year())
}

func TestClient_CurrentUser_Bare(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":"u2","email":"bob@example.com","role":"user","createdAt":"not a date"}`))
	})

	user, err := c.CurrentUser(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "u2", user.ID)
	assert.Equal(t, domainauth.RoleUser, user.Role)
	assert.True(t, user.CreatedAt.IsZero())
}

func TestClient_CurrentUser_MissingIDIsReturnedInvalid(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"user":{"name":"ghost"}}`))
	})

	user, err := c.CurrentUser(context.Background(), "tok")
	require.NoError(t, err)
	assert.False(t, user.Valid())
}

func TestClient_CurrentUser_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
	}{
		{"unauthorized", http.StatusUnauthorized, `{"message":"Token is not valid"}`, apperrors.IsUnauthorized},
		{"forbidden", http.StatusForbidden, ``, apperrors.IsUnauthorized},
		{"server error", http.StatusInternalServerError, `oops`, apperrors.IsUnavailable},
		{"bad gateway", http.StatusBadGateway, ``, apperrors.IsUnavailable},
		{"garbage body", http.StatusOK, `<html>`, apperrors.IsMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := c.CurrentUser(context.Background(), "tok")
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error: %v", err)
		})
	}
}

func TestClient_CurrentUser_EmptyToken(t *testing.T) {
	called := false
	c := newTestClient(t, func(http.ResponseWriter, *http.Request) { called = true })

	_, err := c.CurrentUser(context.Background(), "")
	assert.True(t, apperrors.IsUnauthorized(err))
	assert.False(t, called)
}

func TestClient_CurrentUser_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(Config{BaseURL: url, Timeout: time.Second})
	require.NoError(t, err)
	_, err = c.CurrentUser(context.Background(), "tok")
	require.Error(t, err)
	assert.True(t, apperrors.IsTransient(err), "unexpected error: %v", err)
}

func TestClient_CurrentUser_ContextDeadline(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(http.ResponseWriter, *http.Request) { <-release })
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err := c.CurrentUser(ctx, "tok")
	require.Error(t, err)
	assert.True(t, apperrors.IsTimeout(err), "unexpected error: %v", err)
}

func TestClient_Login(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, loginPath, r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))

		var body loginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body.Password != "secret" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message":"Invalid credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"token":"issued-token"}`))
	})

	token, err := c.Login(context.Background(), ports.LoginInput{Email: "amy@example.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "issued-token", token)

	_, err = c.Login(context.Background(), ports.LoginInput{Email: "amy@example.com", Password: "nope"})
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidCredentials(err))
	assert.Contains(t, err.Error(), "Invalid credentials")
}

func TestClient_LoginCookieReplayedOnCurrentUser(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case loginPath:
			http.SetCookie(w, &http.Cookie{Name: "sid", Value: "server-session", Path: "/", HttpOnly: true})
			_, _ = w.Write([]byte(`{"token":"issued-token"}`))
		case mePath:
			cookie, err := r.Cookie("sid")
			if !assert.NoError(t, err) {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			assert.Equal(t, "server-session", cookie.Value)
			assert.Equal(t, "Bearer issued-token", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`{"user":{"id":"u1","role":"user"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	token, err := c.Login(context.Background(), ports.LoginInput{Email: "amy@example.com", Password: "secret"})
	require.NoError(t, err)

	user, err := c.CurrentUser(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Len(t, c.httpClient.Jar.Cookies(c.BaseURL()), 1)
}

func TestClient_Login_MissingToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	_, err := c.Login(context.Background(), ports.LoginInput{Email: "a", Password: "b"})
	assert.True(t, apperrors.IsMalformedResponse(err))
}

func TestClient_Login_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	_, err := c.Login(context.Background(), ports.LoginInput{Email: "a", Password: "b"})
	assert.True(t, apperrors.IsUnavailable(err))
}

func TestClient_OAuthStartURL(t *testing.T) {
	c, err := New(Config{BaseURL: "https://api.example.com/base"})
	require.NoError(t, err)

	got := c.OAuthStartURL("google", "http://127.0.0.1:4000/auth/callback?state=s1")
	assert.Equal(t,
		"https://api.example.com/base/api/auth/google?redirect_uri=http%3A%2F%2F127.0.0.1%3A4000%2Fauth%2Fcallback%3Fstate%3Ds1",
		got)
}
