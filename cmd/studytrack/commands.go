package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/studytrack/studytrack-client/internal/adapters/apiclient"
	"github.com/studytrack/studytrack-client/internal/adapters/console"
	"github.com/studytrack/studytrack-client/internal/bootstrap"
	domainauth "github.com/studytrack/studytrack-client/internal/domain/auth"
	apperrors "github.com/studytrack/studytrack-client/internal/errors"
	httpx "github.com/studytrack/studytrack-client/internal/http"
	"github.com/studytrack/studytrack-client/internal/ports"
	"github.com/studytrack/studytrack-client/internal/service"
)

// session bundles the wired controller with the resources backing it.
type session struct {
	ctrl  *service.SessionController
	api   *apiclient.Client
	close func() error
}

func openSession(cmdCtx *commandContext) (*session, error) {
	cfg := cmdCtx.Config
	store, closeStore, err := bootstrap.BuildCredentialStore(cmdCtx.Ctx, bootstrap.CredentialStoreConfig{
		Credentials: cfg.Credentials,
		Redis:       cfg.Redis,
		Logger:      cmdCtx.Logger,
	})
	if err != nil {
		return nil, err
	}

	api, err := bootstrap.BuildAPIClient(bootstrap.APIClientConfig{API: cfg.API, Logger: cmdCtx.Logger})
	if err != nil {
		return nil, errors.Join(err, closeStore())
	}

	ctrl, err := bootstrap.BuildSessionController(bootstrap.SessionControllerConfig{
		Config: &cfg,
		Ports: service.SessionPorts{
			Store:     store,
			API:       api,
			Navigator: console.NewNavigator(cmdCtx.IO.Stdout),
			Notifier:  console.NewNotifier(cmdCtx.IO.Stderr, cmdCtx.Logger),
		},
		Logger: cmdCtx.Logger,
	})
	if err != nil {
		return nil, errors.Join(err, closeStore())
	}

	return &session{ctrl: ctrl, api: api, close: closeStore}, nil
}

func withSession(cmdCtx *commandContext, fn func(s *session) error) (err error) {
	s, err := openSession(cmdCtx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := s.close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close credential store: %w", closeErr))
		}
	}()
	return fn(s)
}

type loginOptions struct {
	Email    string
	Password string
}

func parseLoginFlags(name string, args []string) (loginOptions, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts loginOptions
	fs.StringVar(&opts.Email, "email", "", "Account email (required)")
	fs.StringVar(&opts.Password, "password", "", "Account password (prompted when omitted)")

	if err := fs.Parse(args); err != nil {
		return loginOptions{}, err
	}
	opts.Email = strings.TrimSpace(opts.Email)
	if opts.Email == "" {
		return loginOptions{}, errors.New("--email is required")
	}
	return opts, nil
}

func runLogin(cmdCtx *commandContext, args []string) error {
	return runCredentialLogin(cmdCtx, "login", args)
}

func runAdminLogin(cmdCtx *commandContext, args []string) error {
	return runCredentialLogin(cmdCtx, "admin-login", args)
}

func runCredentialLogin(cmdCtx *commandContext, name string, args []string) error {
	opts, err := parseLoginFlags(name, args)
	if err != nil {
		return err
	}
	if opts.Password == "" {
		opts.Password, err = promptPassword(cmdCtx.IO, "Password: ")
		if err != nil {
			return err
		}
	}

	return withSession(cmdCtx, func(s *session) error {
		in := ports.LoginInput{Email: opts.Email, Password: opts.Password}
		login := s.ctrl.Login
		if name == "admin-login" {
			login = s.ctrl.AdminLogin
		}
		user, err := login(cmdCtx.Ctx, in)
		if err != nil {
			if apperrors.IsForbidden(err) {
				return fmt.Errorf("%s is not an administrator: %w", opts.Email, err)
			}
			return err
		}
		return printUser(cmdCtx.IO.Stdout, user)
	})
}

// promptPassword reads without echo from a terminal, or a single line from piped input.
func promptPassword(cio commandIO, prompt string) (string, error) {
	if f, ok := cio.Stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if err := writef(cio.Stderr, "%s", prompt); err != nil {
			return "", err
		}
		raw, err := term.ReadPassword(int(f.Fd()))
		_ = writef(cio.Stderr, "\n")
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(raw), nil
	}

	line, err := bufio.NewReader(cio.Stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

type oauthOptions struct {
	Provider string
}

func parseOAuthFlags(args []string, defaultProvider string) (oauthOptions, error) {
	fs := flag.NewFlagSet("oauth-login", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts oauthOptions
	fs.StringVar(&opts.Provider, "provider", defaultProvider, "Social login provider")

	if err := fs.Parse(args); err != nil {
		return oauthOptions{}, err
	}
	opts.Provider = strings.ToLower(strings.TrimSpace(opts.Provider))
	if opts.Provider == "" {
		return oauthOptions{}, errors.New("--provider must not be empty")
	}
	return opts, nil
}

func runOAuthLogin(cmdCtx *commandContext, args []string) error {
	opts, err := parseOAuthFlags(args, cmdCtx.Config.OAuth.Provider)
	if err != nil {
		return err
	}

	return withSession(cmdCtx, func(s *session) error {
		srv, err := httpx.NewCallbackServer(httpx.CallbackServerOptions{
			Controller: s.ctrl,
			Addr:       cmdCtx.Config.OAuth.CallbackAddr,
			Logger:     cmdCtx.Logger,
		})
		if err != nil {
			return err
		}

		startURL := s.api.OAuthStartURL(opts.Provider, srv.RedirectURI())
		if err := writef(cmdCtx.IO.Stdout, "Open this URL in your browser to continue:\n\n  %s\n\n", startURL); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmdCtx.Ctx, cmdCtx.Config.OAuth.WaitTimeout)
		defer cancel()
		if err := srv.Wait(ctx); err != nil {
			if apperrors.IsTimeout(err) {
				return fmt.Errorf("no browser callback within %s: %w", cmdCtx.Config.OAuth.WaitTimeout, err)
			}
			return err
		}

		user := s.ctrl.CurrentUser()
		if user == nil {
			return apperrors.Unauthorized("sign-in did not produce a session")
		}
		return printUser(cmdCtx.IO.Stdout, user)
	})
}

func runLogout(cmdCtx *commandContext, _ []string) error {
	return withSession(cmdCtx, func(s *session) error {
		if err := s.ctrl.Logout(cmdCtx.Ctx); err != nil {
			return err
		}
		return writef(cmdCtx.IO.Stdout, "Signed out.\n")
	})
}

func runWhoami(cmdCtx *commandContext, _ []string) error {
	return withSession(cmdCtx, func(s *session) error {
		user, err := s.ctrl.ResolveSession(cmdCtx.Ctx)
		if err != nil && !apperrors.RejectsCredential(err) {
			return err
		}
		if user == nil {
			return writef(cmdCtx.IO.Stdout, "Not signed in.\n")
		}
		return printUser(cmdCtx.IO.Stdout, user)
	})
}

func runOpen(cmdCtx *commandContext, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: studytrack open <path>")
	}
	path := domainauth.NormalizePath(args[0])

	return withSession(cmdCtx, func(s *session) error {
		d, err := s.ctrl.Navigate(cmdCtx.Ctx, path)
		if err != nil {
			return err
		}
		switch d.Kind {
		case domainauth.DecisionRedirect:
			return writef(cmdCtx.IO.Stdout, "%s (%s) redirected to %s: %s\n", path, d.Class, d.Target, d.Reason)
		case domainauth.DecisionPending:
			return writef(cmdCtx.IO.Stdout, "%s (%s) pending: session still loading\n", path, d.Class)
		default:
			return writef(cmdCtx.IO.Stdout, "%s (%s) allowed\n", path, d.Class)
		}
	})
}

func printUser(w io.Writer, u *domainauth.User) error {
	name := u.Name
	if name == "" {
		name = u.ID
	}
	if u.Email != "" {
		return writef(w, "Signed in as %s <%s> (%s)\n", name, u.Email, u.Role)
	}
	return writef(w, "Signed in as %s (%s)\n", name, u.Role)
}
