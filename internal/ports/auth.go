// Package ports defines interfaces (hexagonal ports) for session-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.
package ports

import (
	"context"
	"errors"

	domainauth "github.com/studytrack/studytrack-client/internal/domain/auth"
)

// ErrNoCredential is returned by CredentialStore.Get when nothing is stored.
var ErrNoCredential = errors.New("no stored credential")

// CredentialStore holds the bearer token durably across restarts.
type CredentialStore interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// AuthAPI is the remote study tracker API as seen by the session controller.
type AuthAPI interface {
	// CurrentUser returns the account the token belongs to ("who am I").
	// Fails with Unauthorized when the token is rejected and Unavailable on transport errors.
	CurrentUser(ctx context.Context, token string) (domainauth.User, error)

	// Login exchanges email and password for a bearer token.
	// Fails with InvalidCredentials or Unavailable.
	Login(ctx context.Context, in LoginInput) (string, error)
}

// LoginInput groups the login form fields.
type LoginInput struct {
	Email    string
	Password string
}

// Navigator performs the effectful redirect chosen by the route guard.
type Navigator interface {
	Navigate(ctx context.Context, path string) error
}

// Notifier delivers transient user-visible notices.
type Notifier interface {
	Notify(ctx context.Context, n domainauth.Notice)
}
