// Package httpx hosts the loopback landing server used by the OAuth login flow.
package httpx

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	domainauth "github.com/studytrack/studytrack-client/internal/domain/auth"
	apperrors "github.com/studytrack/studytrack-client/internal/errors"
	"github.com/studytrack/studytrack-client/internal/service"
)

// CallbackPath is the landing route the API redirects back to.
const CallbackPath = "/auth/callback"

const (
	defaultCallbackAddr = "127.0.0.1:0"
	shutdownTimeout     = 5 * time.Second
	readHeaderTimeout   = 5 * time.Second
)

// CallbackController is the part of the session controller the landing route drives.
type CallbackController interface {
	Navigate(ctx context.Context, path string) (domainauth.Decision, error)
	ConsumeCallback(ctx context.Context, p domainauth.CallbackParams) error
	Snapshot() domainauth.View
}

// CallbackServerOptions groups dependencies for CallbackServer.
type CallbackServerOptions struct {
	Controller CallbackController // Required
	Addr       string             // Optional: defaults to 127.0.0.1 on a random port
	Logger     *slog.Logger       // Optional
}

// CallbackServer listens on a loopback address for a single OAuth redirect.
type CallbackServer struct {
	ctrl     CallbackController
	logger   *slog.Logger
	state    string
	listener net.Listener
	srv      *http.Server

	once sync.Once
	done chan error
}

// NewCallbackServer binds the listener right away so the redirect URI is known
// before the browser is sent to the provider.
func NewCallbackServer(opts CallbackServerOptions) (*CallbackServer, error) {
	if opts.Controller == nil {
		return nil, errors.New("callback controller is required")
	}
	addr := opts.Addr
	if addr == "" {
		addr = defaultCallbackAddr
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	s := &CallbackServer{
		ctrl:     opts.Controller,
		logger:   logger.With("component", "oauth_callback"),
		state:    uuid.NewString(),
		listener: ln,
		done:     make(chan error, 1),
	}
	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return s, nil
}

// State returns the nonce the callback must echo back.
func (s *CallbackServer) State() string { return s.state }

// Addr returns the bound listener address.
func (s *CallbackServer) Addr() string { return s.listener.Addr().String() }

// RedirectURI is the absolute landing URL handed to the API's OAuth start route.
func (s *CallbackServer) RedirectURI() string {
	u := url.URL{
		Scheme:   "http",
		Host:     s.Addr(),
		Path:     CallbackPath,
		RawQuery: url.Values{"state": {s.state}}.Encode(),
	}
	return u.String()
}

// Handler returns the landing route wrapped in the standard middleware.
func (s *CallbackServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+CallbackPath, s.handleCallback)
	return Recover(s.logger)(Logging(s.logger)(NoStore(mux)))
}

// Wait serves until one callback has been consumed or ctx ends, then shuts the server down.
// It returns the callback outcome, or a timeout/canceled error when ctx ended first.
func (s *CallbackServer) Wait(ctx context.Context) error {
	var (
		result   error
		received bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.srv.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve oauth callback: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		select {
		case result = <-s.done:
			received = true
		case <-gctx.Done():
		}
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown oauth callback: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	if !received {
		return apperrors.MapTransportError(ctx.Err())
	}
	return result
}

func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("state") != s.state {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_state",
			Err:     errors.New("invalid or missing state parameter"),
		})
		return
	}

	params := domainauth.CallbackParams{Token: q.Get("token"), Error: q.Get("error")}
	if params.Empty() {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_params",
			Err:     errors.New("token or error parameter is required"),
		})
		return
	}

	ctx := r.Context()
	if _, err := s.ctrl.Navigate(ctx, CallbackPath); err != nil {
		s.logger.WarnContext(ctx, "navigation to landing route failed", "error", err)
	}
	err := s.ctrl.ConsumeCallback(ctx, params)
	ctx = service.ContextWithView(ctx, s.ctrl.Snapshot())

	status := http.StatusOK
	if err != nil {
		status = http.StatusUnauthorized
	}
	s.render(w, status, callbackPageFor(ctx, err))
	s.finish(err)
}

func (s *CallbackServer) finish(err error) {
	s.once.Do(func() {
		s.done <- err
	})
}

type callbackPage struct {
	Title   string
	Message string
}

func callbackPageFor(ctx context.Context, err error) callbackPage {
	if err != nil {
		return callbackPage{Title: "Sign-in failed", Message: callbackFailureMessage(err)}
	}
	title := "Signed in"
	if v, ok := service.ViewFromContext(ctx); ok && v.LoggedIn {
		name := v.User.Name
		if name == "" {
			name = v.User.Email
		}
		if name != "" {
			title = "Signed in as " + name
		}
	}
	return callbackPage{Title: title, Message: "You can close this window and return to the terminal."}
}

var callbackTemplate = template.Must(template.New("callback").Parse(`<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
<p>{{.Message}}</p>
</body>
</html>
`))

func (s *CallbackServer) render(w http.ResponseWriter, status int, page callbackPage) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := callbackTemplate.Execute(w, page); err != nil {
		s.logger.Warn("render callback page failed", "error", err)
	}
}

func callbackFailureMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return "Sign-in could not be completed. Please try again."
}
