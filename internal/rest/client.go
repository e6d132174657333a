package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/chaladshare/client-go/pkg/config"
	"github.com/chaladshare/client-go/pkg/logging"
	"github.com/chaladshare/client-go/pkg/telemetry"
)

const apiPrefix = "/api/v1"

// authPaths render their own inline errors; a 401 on them must not bounce
// the caller to the login boundary.
var authPaths = []string{
	"/auth/login",
	"/auth/register",
	"/auth/verify-otp",
	"/auth/forgot-password",
	"/auth/reset-password",
	"/auth/logout",
}

// SessionStore persists the session cookie between client instances
type SessionStore interface {
	LoadSession(ctx context.Context) (string, error)
	SaveSession(ctx context.Context, value string) error
	ClearSession(ctx context.Context) error
}

// Client is the HTTP transport to the ChaladShare backend. All calls are
// JSON over the /api/v1 prefix with the session carried in a cookie.
type Client struct {
	base       *url.URL
	http       *http.Client
	cookieName string
	logger     *zap.Logger

	sessions      SessionStore
	onAuthExpired func()
}

// New creates a new backend client
func New(cfg *config.APIConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("api_base_url is required")
	}

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api_base_url: %w", err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	logger := logging.GetLogger().With(zap.String("component", "rest-client"))

	client := &Client{
		base:       base,
		cookieName: cfg.CookieName,
		logger:     logger,
		http: &http.Client{
			Timeout: cfg.Timeout,
			Jar:     jar,
		},
	}

	logger.Debug("Backend client initialized", zap.String("base_url", base.String()))

	return client, nil
}

// OnAuthExpired registers the login-boundary hook invoked on a 401 from any
// non-auth endpoint.
func (c *Client) OnAuthExpired(fn func()) {
	c.onAuthExpired = fn
}

// UseSessionStore attaches a session store and restores any saved session
func (c *Client) UseSessionStore(ctx context.Context, store SessionStore) error {
	c.sessions = store
	if store == nil {
		return nil
	}

	value, err := store.LoadSession(ctx)
	if err != nil || value == "" {
		return err
	}

	c.http.Jar.SetCookies(c.base, []*http.Cookie{{
		Name:  c.cookieName,
		Value: value,
		Path:  "/",
	}})
	return nil
}

// SessionValue returns the current session cookie value, if any
func (c *Client) SessionValue() string {
	for _, ck := range c.http.Jar.Cookies(c.base) {
		if ck.Name == c.cookieName {
			return ck.Value
		}
	}
	return ""
}

// Get issues a GET request and decodes the JSON response into out
func (c *Client) Get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

// Post issues a POST request with a JSON body
func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

// Delete issues a DELETE request
func (c *Client) Delete(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	ctx, span := telemetry.StartSpan(ctx, "rest."+strings.ToLower(method)+" "+path)
	defer span.End()

	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + apiPrefix + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.persistSession(ctx)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := NewError(resp.StatusCode, errorMessage(data))
		if apiErr.IsAuthExpired() && !isAuthPath(path) {
			c.logger.Warn("Session expired, redirecting to login boundary", zap.String("path", path))
			if c.onAuthExpired != nil {
				c.onAuthExpired()
			}
		}
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to unmarshal %s response: %w", path, err)
	}

	return nil
}

// persistSession mirrors the session cookie to the session store so a later
// process can resume the login.
func (c *Client) persistSession(ctx context.Context) {
	if c.sessions == nil {
		return
	}

	value := c.SessionValue()
	var err error
	if value == "" {
		err = c.sessions.ClearSession(ctx)
	} else {
		err = c.sessions.SaveSession(ctx, value)
	}
	if err != nil {
		c.logger.Warn("Failed to persist session cookie", zap.Error(err))
	}
}

func isAuthPath(path string) bool {
	for _, p := range authPaths {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func errorMessage(data []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	msg := strings.TrimSpace(string(data))
	if msg == "" {
		return "request failed"
	}
	return msg
}
