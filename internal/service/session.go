package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	domainauth "github.com/studytrack/studytrack-client/internal/domain/auth"
	apperrors "github.com/studytrack/studytrack-client/internal/errors"
	"github.com/studytrack/studytrack-client/internal/ports"
)

// DefaultResolveTimeout bounds a single "who am I" resolution.
const DefaultResolveTimeout = 5 * time.Second

// ErrSuperseded is returned when a newer resolution or a logout started while this one was in flight.
// The superseded result has been discarded.
var ErrSuperseded = errors.New("session resolution superseded")

// Notice texts shown by the controller.
const (
	msgSessionExpired     = "Your session has expired. Please log in again."
	msgInvalidCredentials = "Invalid email or password."
	msgServiceUnavailable = "The study tracker service is unreachable. Please try again shortly."
	msgAdminRequired      = "This account does not have administrator access."
)

// SessionPorts groups the collaborators the controller talks to.
type SessionPorts struct {
	Store     ports.CredentialStore // Required
	API       ports.AuthAPI         // Required
	Navigator ports.Navigator       // Optional: redirects are skipped when nil
	Notifier  ports.Notifier        // Optional: notices are dropped when nil
}

// SessionConfig holds routing and timing settings.
type SessionConfig struct {
	Routes         domainauth.RouteTable
	ResolveTimeout time.Duration
}

// SessionControllerOptions groups dependencies for SessionController.
type SessionControllerOptions struct {
	Ports  SessionPorts
	Config SessionConfig
	Logger *slog.Logger
}

// SessionController owns the authenticated-user state and enforces route access.
// It is the single writer of the session and the stored credential; views only read
// snapshots or call Logout.
type SessionController struct {
	store    ports.CredentialStore
	api      ports.AuthAPI
	nav      ports.Navigator
	notifier ports.Notifier
	routes   domainauth.RouteTable
	timeout  time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	user    *domainauth.User
	loading bool
	// gen identifies the most recently started resolution; results tagged with an older value are dropped.
	gen uint64
	// navSeq counts navigations; consumedNav is the navigation that last consumed an OAuth callback.
	navSeq      uint64
	consumedNav uint64
}

// NewSessionController constructs a controller in the INIT state (no user, loading).
func NewSessionController(opts SessionControllerOptions) (*SessionController, error) {
	if opts.Ports.Store == nil {
		return nil, errors.New("credential store is required")
	}
	if opts.Ports.API == nil {
		return nil, errors.New("auth API is required")
	}

	routes := opts.Config.Routes
	if routes.Entry == "" || routes.Landing == "" {
		routes = domainauth.DefaultRoutes()
	}
	if routes.AdminLanding == "" {
		routes.AdminLanding = routes.Landing
	}

	timeout := opts.Config.ResolveTimeout
	if timeout <= 0 {
		timeout = DefaultResolveTimeout
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &SessionController{
		store:    opts.Ports.Store,
		api:      opts.Ports.API,
		nav:      opts.Ports.Navigator,
		notifier: opts.Ports.Notifier,
		routes:   routes,
		timeout:  timeout,
		logger:   logger.With("component", "session"),
		loading:  true,
		navSeq:   1,
	}, nil
}

// MustNewSessionController is like NewSessionController but panics on invalid options.
func MustNewSessionController(opts SessionControllerOptions) *SessionController {
	c, err := NewSessionController(opts)
	if err != nil {
		panic(err)
	}
	return c
}

// Routes returns the route table the controller enforces.
func (c *SessionController) Routes() domainauth.RouteTable { return c.routes }

// Snapshot returns the current read-only view of the session.
func (c *SessionController) Snapshot() domainauth.View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domainauth.NewView(c.user, c.loading)
}

// CurrentUser returns a copy of the resolved user, or nil when anonymous.
func (c *SessionController) CurrentUser() *domainauth.User { return c.Snapshot().User }

// Loading reports whether the current resolution has not completed yet.
func (c *SessionController) Loading() bool { return c.Snapshot().Loading }

// IsLoggedIn reports whether a user is resolved.
func (c *SessionController) IsLoggedIn() bool { return c.Snapshot().LoggedIn }

// IsAdmin reports whether the resolved user holds the admin role.
func (c *SessionController) IsAdmin() bool { return c.Snapshot().Admin }

// Decide evaluates the route guard for path against the current snapshot without side effects.
func (c *SessionController) Decide(path string) domainauth.Decision {
	return domainauth.DecideRedirect(path, c.Snapshot(), c.routes)
}

// ResolveSession derives the current user from the stored credential.
//
// With no credential it resolves to anonymous without a remote call. A rejected or malformed
// answer clears the credential; transient failures keep it. The result of a resolution that
// was superseded by a newer one (or by Logout) is discarded and ErrSuperseded is returned.
func (c *SessionController) ResolveSession(ctx context.Context) (*domainauth.User, error) {
	gen := c.beginResolve()

	token, err := c.store.Get(ctx)
	if errors.Is(err, ports.ErrNoCredential) || (err == nil && strings.TrimSpace(token) == "") {
		if !c.commit(gen, nil) {
			return nil, ErrSuperseded
		}
		c.logger.DebugContext(ctx, "session resolved", "state", "anonymous", "generation", gen)
		return nil, nil
	}
	if err != nil {
		// Unreadable store: fail closed for this cycle, leave whatever is stored alone.
		if !c.commit(gen, nil) {
			return nil, ErrSuperseded
		}
		return nil, fmt.Errorf("read credential: %w", err)
	}

	rctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	user, err := c.api.CurrentUser(rctx, token)
	if err == nil && !user.Valid() {
		err = apperrors.MalformedResponse("current user payload has no identifier")
	}
	if err != nil {
		return nil, c.failResolve(ctx, gen, apperrors.MapTransportError(err))
	}

	if !c.commit(gen, &user) {
		c.logger.DebugContext(ctx, "discarding superseded session result", "generation", gen)
		return nil, ErrSuperseded
	}
	c.logger.DebugContext(ctx, "session resolved",
		"state", "authenticated",
		"user_id", user.ID,
		"role", user.Role,
		"generation", gen)
	cp := user
	return &cp, nil
}

// failResolve applies the state transition for a failed resolution.
func (c *SessionController) failResolve(ctx context.Context, gen uint64, err error) error {
	if !c.commit(gen, nil) {
		c.logger.DebugContext(ctx, "discarding superseded session failure", "generation", gen, "error", err)
		return ErrSuperseded
	}

	if apperrors.RejectsCredential(err) {
		if clearErr := c.store.Clear(ctx); clearErr != nil {
			err = errors.Join(err, fmt.Errorf("clear credential: %w", clearErr))
		}
		c.logger.InfoContext(ctx, "stored credential rejected; cleared", "code", apperrors.GetCode(err))
		c.notify(ctx, domainauth.NoticeError, msgSessionExpired)
		return fmt.Errorf("resolve session: %w", err)
	}

	if apperrors.IsTransient(err) {
		c.logger.WarnContext(ctx, "session resolution failed transiently; keeping credential",
			"code", apperrors.GetCode(err), "error", err)
		return fmt.Errorf("resolve session: %w", err)
	}
	c.logger.ErrorContext(ctx, "session resolution failed; keeping credential",
		"code", apperrors.GetCode(err), "error", err)
	return fmt.Errorf("resolve session: %w", err)
}

// Navigate runs the route guard for a route change: it resolves the session, decides,
// and performs at most one redirect. Resolution failures are absorbed into the session
// state; only a failing Navigator is reported.
func (c *SessionController) Navigate(ctx context.Context, path string) (domainauth.Decision, error) {
	c.beginNavigation()

	if _, err := c.ResolveSession(ctx); err != nil {
		if errors.Is(err, ErrSuperseded) {
			return domainauth.Decision{
				Kind:   domainauth.DecisionPending,
				Class:  c.routes.Classify(path),
				Reason: domainauth.ReasonLoading,
			}, nil
		}
		c.logger.DebugContext(ctx, "navigation continues after failed resolution", "path", path, "error", err)
	}

	d := c.Decide(path)
	if !d.Redirects() {
		return d, nil
	}

	c.logger.DebugContext(ctx, "route guard redirect",
		"path", path,
		"class", d.Class.String(),
		"target", d.Target,
		"reason", d.Reason)
	if err := c.redirect(ctx, d.Target); err != nil {
		return d, err
	}
	return d, nil
}

// ConsumeCallback handles the OAuth landing route once per navigation.
// A token is stored and the session refreshed before moving to the landing route;
// an error code is reported to the user and leads back to the entry route.
func (c *SessionController) ConsumeCallback(ctx context.Context, p domainauth.CallbackParams) error {
	if p.Empty() || !c.markConsumed() {
		return nil
	}

	token := strings.TrimSpace(p.Token)
	if token == "" {
		code := domainauth.CallbackCode(strings.TrimSpace(p.Error))
		msg := code.Message()
		c.logger.InfoContext(ctx, "oauth callback reported an error", "code", string(code))
		c.notify(ctx, domainauth.NoticeError, msg)
		if err := c.redirect(ctx, c.routes.Entry); err != nil {
			return err
		}
		return apperrors.OAuthCallback(string(code), msg)
	}

	if err := c.store.Set(ctx, token); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "store credential")
	}
	if _, err := c.ResolveSession(ctx); err != nil && !errors.Is(err, ErrSuperseded) {
		c.logger.WarnContext(ctx, "session refresh after oauth callback failed", "error", err)
	}
	return c.redirect(ctx, c.routes.Landing)
}

// Login exchanges email and password for a credential and lands on the protected area.
func (c *SessionController) Login(ctx context.Context, in ports.LoginInput) (*domainauth.User, error) {
	user, err := c.exchange(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := c.redirect(ctx, c.routes.Landing); err != nil {
		return user, err
	}
	return user, nil
}

// AdminLogin is the credential exchange behind the admin login route. Accounts without the
// admin role are signed out again and Forbidden is returned.
func (c *SessionController) AdminLogin(ctx context.Context, in ports.LoginInput) (*domainauth.User, error) {
	user, err := c.exchange(ctx, in)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin() {
		c.reset()
		c.notify(ctx, domainauth.NoticeError, msgAdminRequired)
		refused := apperrors.Forbidden("administrator role required")
		if clearErr := c.store.Clear(ctx); clearErr != nil {
			c.logger.WarnContext(ctx, "clear credential after admin login refusal", "error", clearErr)
			return nil, errors.Join(refused, fmt.Errorf("clear credential: %w", clearErr))
		}
		return nil, refused
	}
	if err := c.redirect(ctx, c.routes.AdminLanding); err != nil {
		return user, err
	}
	return user, nil
}

// exchange performs login, stores the token and resolves the session.
func (c *SessionController) exchange(ctx context.Context, in ports.LoginInput) (*domainauth.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	if in.Email == "" {
		return nil, apperrors.ValidationField("email", "email is required")
	}
	if in.Password == "" {
		return nil, apperrors.ValidationField("password", "password is required")
	}

	token, err := c.api.Login(ctx, in)
	if err == nil && strings.TrimSpace(token) == "" {
		err = apperrors.MalformedResponse("login response has no token")
	}
	if err != nil {
		err = apperrors.MapTransportError(err)
		if apperrors.IsInvalidCredentials(err) {
			c.notify(ctx, domainauth.NoticeError, msgInvalidCredentials)
		} else {
			c.notify(ctx, domainauth.NoticeError, msgServiceUnavailable)
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if err := c.store.Set(ctx, token); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "store credential")
	}

	user, err := c.ResolveSession(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.Internal("credential vanished before the session could be resolved")
	}
	return user, nil
}

// Logout clears the credential and the user, invalidates any in-flight resolution and
// navigates to the entry route. Calling it while anonymous is harmless.
func (c *SessionController) Logout(ctx context.Context) error {
	c.reset()

	var errs []error
	if err := c.store.Clear(ctx); err != nil {
		errs = append(errs, fmt.Errorf("clear credential: %w", err))
	}
	c.logger.InfoContext(ctx, "logged out")
	if err := c.redirect(ctx, c.routes.Entry); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (c *SessionController) beginResolve() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.loading = true
	return c.gen
}

// commit stores the outcome of resolution gen if it is still the latest one.
func (c *SessionController) commit(gen uint64, u *domainauth.User) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}
	if u != nil {
		cp := *u
		c.user = &cp
	} else {
		c.user = nil
	}
	c.loading = false
	return true
}

// reset moves to ANONYMOUS and orphans any resolution in flight.
func (c *SessionController) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.user = nil
	c.loading = false
}

func (c *SessionController) beginNavigation() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.navSeq++
}

// markConsumed records that the current navigation consumed its callback.
// It returns false when it already had.
func (c *SessionController) markConsumed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.consumedNav == c.navSeq {
		return false
	}
	c.consumedNav = c.navSeq
	return true
}

func (c *SessionController) redirect(ctx context.Context, path string) error {
	if c.nav == nil {
		return nil
	}
	if err := c.nav.Navigate(ctx, path); err != nil {
		return fmt.Errorf("navigate to %s: %w", path, err)
	}
	return nil
}

func (c *SessionController) notify(ctx context.Context, level domainauth.NoticeLevel, msg string) {
	if c.notifier == nil {
		return
	}
	c.notifier.Notify(ctx, domainauth.Notice{Level: level, Message: msg})
}
