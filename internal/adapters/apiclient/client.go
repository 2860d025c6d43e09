// Package apiclient implements the session ports against the study tracker REST API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/studytrack/studytrack-client/internal/domain/auth"
	apperrors "github.com/studytrack/studytrack-client/internal/errors"
	"github.com/studytrack/studytrack-client/internal/ports"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/oauth2"
)

const (
	mePath    = "/api/auth/me"
	loginPath = "/api/auth/login"

	maxBodyBytes = 1 << 20
)

// Config holds settings for the API client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	UserAgent  string
	// HTTPClient is optional. The default client carries a cookie jar so a session cookie
	// the API sets on login is replayed on later calls from the same process.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client talks to the study tracker API.
type Client struct {
	base       *url.URL
	httpClient *http.Client
	userAgent  string
	logger     *slog.Logger
}

// New creates a new API client.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("API base URL is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse API base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("API base URL must be http or https, got %q", cfg.BaseURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		jar, jarErr := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if jarErr != nil {
			return nil, fmt.Errorf("create cookie jar: %w", jarErr)
		}
		httpClient = &http.Client{Timeout: timeout, Jar: jar}
	}

	ua := cfg.UserAgent
	if ua == "" {
		ua = "studytrack-cli"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		base:       base,
		httpClient: httpClient,
		userAgent:  ua,
		logger:     logger,
	}, nil
}

// BaseURL returns the API root the client was configured with.
func (c *Client) BaseURL() *url.URL {
	u := *c.base
	return &u
}

// OAuthStartURL returns the API endpoint that starts an OAuth sign-in with provider
// and sends the browser back to redirectURI afterwards.
func (c *Client) OAuthStartURL(provider, redirectURI string) string {
	u := c.endpoint("/api/auth/" + url.PathEscape(provider))
	q := url.Values{}
	q.Set("redirect_uri", redirectURI)
	u.RawQuery = q.Encode()
	return u.String()
}

// wireUser accepts both "id" and Mongo-style "_id" identifiers.
type wireUser struct {
	ID        string `json:"id"`
	MongoID   string `json:"_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt"`
}

func (w wireUser) toDomain() domainauth.User {
	u := domainauth.User{
		ID:    w.ID,
		Name:  w.Name,
		Email: w.Email,
		Role:  domainauth.Role(strings.ToLower(strings.TrimSpace(w.Role))),
	}
	if u.ID == "" {
		u.ID = w.MongoID
	}
	if w.CreatedAt != "" {
		if ts, err := time.Parse(time.RFC3339, w.CreatedAt); err == nil {
			u.CreatedAt = ts
		}
	}
	return u
}

// meResponse covers both {"user": {...}} and a bare user object.
type meResponse struct {
	User *wireUser `json:"user"`
	wireUser
}

// CurrentUser calls GET /api/auth/me with the token as a bearer credential.
func (c *Client) CurrentUser(ctx context.Context, token string) (domainauth.User, error) {
	if strings.TrimSpace(token) == "" {
		return domainauth.User{}, apperrors.Unauthorized("no credential")
	}

	req, err := c.newRequest(ctx, http.MethodGet, mePath, nil)
	if err != nil {
		return domainauth.User{}, err
	}

	authed := &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
			Base:   c.httpClient.Transport,
		},
		CheckRedirect: c.httpClient.CheckRedirect,
		Jar:           c.httpClient.Jar,
		Timeout:       c.httpClient.Timeout,
	}

	var out meResponse
	if err := c.do(authed, req, doParams{Out: &out}); err != nil {
		return domainauth.User{}, fmt.Errorf("fetch current user: %w", err)
	}

	w := out.wireUser
	if out.User != nil {
		w = *out.User
	}
	return w.toDomain(), nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login calls POST /api/auth/login and returns the issued token.
func (c *Client) Login(ctx context.Context, in ports.LoginInput) (string, error) {
	body, err := json.Marshal(loginRequest{Email: in.Email, Password: in.Password})
	if err != nil {
		return "", fmt.Errorf("marshal login request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, loginPath, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	var out loginResponse
	if err := c.do(c.httpClient, req, doParams{Out: &out, Login: true}); err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	if strings.TrimSpace(out.Token) == "" {
		return "", apperrors.MalformedResponse("login response has no token")
	}
	return out.Token, nil
}

func (c *Client) endpoint(path string) *url.URL {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	u.RawQuery = ""
	return &u
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path).String(), body)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "build request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	return req, nil
}

// doParams groups the decode target and status semantics for do.
type doParams struct {
	Out   any
	Login bool
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *Client) do(hc *http.Client, req *http.Request, p doParams) error {
	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		return apperrors.MapTransportError(err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.DebugContext(req.Context(), "close response body", "error", cerr)
		}
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return apperrors.MapTransportError(err)
	}

	c.logger.DebugContext(req.Context(), "api call",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var eb errorBody
		_ = json.Unmarshal(data, &eb)
		detail := eb.Message
		if detail == "" {
			detail = eb.Error
		}
		return apperrors.MapStatus(apperrors.StatusParams{Status: resp.StatusCode, Login: p.Login, Detail: detail})
	}

	if p.Out == nil {
		return nil
	}
	if err := json.Unmarshal(data, p.Out); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeMalformedResponse, "decode response")
	}
	return nil
}
