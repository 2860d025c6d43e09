package auth

// Package auth contains simple hand-written test doubles for session ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"sync"

	domainauth "github.com/studytrack/studytrack-client/internal/domain/auth"
	"github.com/studytrack/studytrack-client/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthAPI         = (*StubAuthAPI)(nil)
	_ ports.CredentialStore = (*MemoryCredentialStore)(nil)
	_ ports.Navigator       = (*RecordingNavigator)(nil)
	_ ports.Notifier        = (*RecordingNotifier)(nil)
)

// StubAuthAPI simulates the remote API with deterministic defaults.
type StubAuthAPI struct {
	CurrentUserFunc func(ctx context.Context, token string) (domainauth.User, error)
	LoginFunc       func(ctx context.Context, in ports.LoginInput) (string, error)

	// DefaultUser is returned by CurrentUser when no func is set.
	DefaultUser domainauth.User
	// DefaultToken is returned by Login when no func is set.
	DefaultToken string

	mu           sync.Mutex
	currentCalls int
	loginCalls   int
}

// NewStubAuthAPI creates a StubAuthAPI with sensible defaults.
func NewStubAuthAPI() *StubAuthAPI {
	return &StubAuthAPI{
		DefaultUser: domainauth.User{
			ID:    "stub-user-1",
			Name:  "Stub User",
			Email: "stub.user@example.com",
			Role:  domainauth.RoleUser,
		},
		DefaultToken: "stub-token",
	}
}

func (s *StubAuthAPI) CurrentUser(ctx context.Context, token string) (domainauth.User, error) {
	s.mu.Lock()
	s.currentCalls++
	s.mu.Unlock()

	if s.CurrentUserFunc != nil {
		return s.CurrentUserFunc(ctx, token)
	}
	return s.DefaultUser, nil
}

func (s *StubAuthAPI) Login(ctx context.Context, in ports.LoginInput) (string, error) {
	s.mu.Lock()
	s.loginCalls++
	s.mu.Unlock()

	if s.LoginFunc != nil {
		return s.LoginFunc(ctx, in)
	}
	token := s.DefaultToken
	if token == "" {
		token = "stub-token"
	}
	return token, nil
}

// CurrentUserCalls returns how many times CurrentUser was invoked.
func (s *StubAuthAPI) CurrentUserCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentCalls
}

// LoginCalls returns how many times Login was invoked.
func (s *StubAuthAPI) LoginCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loginCalls
}

// MemoryCredentialStore is an in-memory credential store for unit tests.
type MemoryCredentialStore struct {
	mu     sync.Mutex
	token  string
	sets   int
	clears int

	// Err, when set, is returned by every operation.
	Err error
	// ClearErr, when set, is returned by Clear only.
	ClearErr error
}

// NewMemoryCredentialStore creates a store pre-loaded with token (may be empty).
func NewMemoryCredentialStore(token string) *MemoryCredentialStore {
	return &MemoryCredentialStore{token: token}
}

func (m *MemoryCredentialStore) Get(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	if m.token == "" {
		return "", ports.ErrNoCredential
	}
	return m.token, nil
}

func (m *MemoryCredentialStore) Set(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.token = token
	m.sets++
	return nil
}

func (m *MemoryCredentialStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if m.ClearErr != nil {
		return m.ClearErr
	}
	m.token = ""
	m.clears++
	return nil
}

// Token returns the stored token without going through Get.
func (m *MemoryCredentialStore) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// Sets returns how many times Set succeeded.
func (m *MemoryCredentialStore) Sets() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sets
}

// Clears returns how many times Clear succeeded.
func (m *MemoryCredentialStore) Clears() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clears
}

// RecordingNavigator records every navigation it is asked to perform.
type RecordingNavigator struct {
	mu    sync.Mutex
	paths []string
	Err   error
}

func (n *RecordingNavigator) Navigate(_ context.Context, path string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paths = append(n.paths, path)
	return n.Err
}

// Paths returns a copy of the recorded navigations in order.
func (n *RecordingNavigator) Paths() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.paths...)
}

// Last returns the most recent navigation, or "" when none happened.
func (n *RecordingNavigator) Last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.paths) == 0 {
		return ""
	}
	return n.paths[len(n.paths)-1]
}

// RecordingNotifier records notices.
type RecordingNotifier struct {
	mu      sync.Mutex
	notices []domainauth.Notice
}

func (n *RecordingNotifier) Notify(_ context.Context, notice domainauth.Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
}

// Notices returns a copy of the recorded notices in order.
func (n *RecordingNotifier) Notices() []domainauth.Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domainauth.Notice(nil), n.notices...)
}
