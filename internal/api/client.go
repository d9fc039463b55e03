// Package api is the REST client for the Baches Yucatán backend. It owns
// URL construction, authentication headers, timeouts and the error-message
// extraction policy; response bodies are handed to internal/normalize.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gusgushz/baches/internal/logbook"
)

// requestTimeout bounds every call so a dead backend never hangs a screen.
const requestTimeout = 7 * time.Second

// ErrNoToken signals an authenticated call attempted without a session.
// Checked before any network I/O happens.
var ErrNoToken = errors.New("No autorizado")

// TokenSource supplies the current bearer token; the session store is the
// production implementation.
type TokenSource func() string

// Client talks to the backend REST API.
type Client struct {
	base  string
	http  *http.Client
	token TokenSource
	log   *logbook.Logbook
}

// Option customizes Client construction, mainly for tests and for wiring
// the offline cache transport.
type Option func(*Client)

// WithTransport installs a custom RoundTripper (the offline cache).
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		if rt != nil {
			c.http.Transport = rt
		}
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// New creates a client for the given base URL. The base may be a bare host,
// a host with /api, or a full entity URL; endpoint() normalizes all three.
func New(baseURL string, token TokenSource, log *logbook.Logbook, opts ...Option) *Client {
	if token == nil {
		token = func() string { return "" }
	}
	c := &Client{
		base:  strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:  &http.Client{Timeout: requestTimeout},
		token: token,
		log:   log.Scoped("api"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// endpoint builds the URL for an entity path like "/workers" or
// "/workers/w1". Deployments configure the base inconsistently (host only,
// host/api, or host/api/workers), so avoid duplicating the /api segment.
func (c *Client) endpoint(path string) string {
	p := "/" + strings.TrimLeft(path, "/")
	first := p
	if idx := strings.Index(p[1:], "/"); idx >= 0 {
		first = p[:idx+1]
	}
	switch {
	case strings.HasSuffix(c.base, "/api"+first) || strings.HasSuffix(c.base, first):
		// Base already points at the entity collection.
		rest := strings.TrimPrefix(p, first)
		return c.base + rest
	case strings.HasSuffix(c.base, "/api"):
		return c.base + p
	default:
		return c.base + "/api" + p
	}
}

// do issues one request. Authenticated calls refuse to leave the process
// without a token. The returned bytes are nil for 204 responses.
func (c *Client) do(ctx context.Context, method, url string, payload any, authenticated bool) ([]byte, error) {
	var tok string
	if authenticated {
		tok = c.token()
		if tok == "" {
			return nil, ErrNoToken
		}
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("api: encode payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("api: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	res, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("%s %s: %v", method, url, err)
		return nil, err
	}
	defer res.Body.Close()

	data, _ := io.ReadAll(res.Body)
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		err := decodeError(res.StatusCode, data)
		c.log.Warn("%s %s -> %d: %v", method, url, res.StatusCode, err)
		return nil, err
	}
	if res.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	return data, nil
}

// decodeError turns a non-2xx response into a single error. Priority:
// JSON message field, JSON error field, raw body text, "Error <status>".
func decodeError(status int, body []byte) error {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if msg := strings.TrimSpace(payload.Message); msg != "" {
			return errors.New(msg)
		}
		if msg := strings.TrimSpace(payload.Error); msg != "" {
			return errors.New(msg)
		}
	}
	if txt := strings.TrimSpace(string(body)); txt != "" {
		return errors.New(txt)
	}
	return fmt.Errorf("Error %d", status)
}
