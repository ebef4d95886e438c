// Package api implements the typed HTTP/JSON client for the CreatorHub
// backend. Every failure is classified onto the apperr taxonomy: transport
// problems become apperr.ErrNetwork and backend answers become
// *apperr.APIError carrying the backend's own message.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/atinyakov/creatorhub/internal/apperr"
	"github.com/atinyakov/creatorhub/internal/logger"
	"go.uber.org/zap"
)

// TokenSource supplies the bearer token for authenticated calls.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// Client talks to the backend rooted at baseURL.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	log     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTokenSource sets where bearer tokens come from.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = logger.OrNop(log) }
}

// New returns a Client for baseURL, e.g. "http://localhost:8080/api".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		tokens:  TokenFunc(func() string { return "" }),
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string { return c.baseURL }

type request struct {
	method string
	path   string
	query  url.Values
	body   any
	// token overrides the TokenSource; used right after login.
	token string
	auth  bool
}

func (c *Client) do(ctx context.Context, r request, out any) error {
	u := c.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.auth {
		token := r.token
		if token == "" {
			token = c.tokens.Token()
		}
		if token == "" {
			return &apperr.APIError{Status: http.StatusUnauthorized, Kind: apperr.ErrUnauthorized}
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(ctxErr, context.Canceled) {
			return ctxErr
		}
		c.log.Debug("request failed", zap.String("method", r.method), zap.String("path", r.path), zap.Error(err))
		return fmt.Errorf("%w: %s %s: %v", apperr.ErrNetwork, r.method, r.path, err)
	}
	defer resp.Body.Close()

	c.log.Debug("request done",
		zap.String("method", r.method),
		zap.String("path", r.path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return &apperr.APIError{
			Status:  resp.StatusCode,
			Message: detailMessage(data),
			Kind:    apperr.KindForStatus(resp.StatusCode),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s response: %v", apperr.ErrNetwork, r.path, err)
	}
	return nil
}

// detailMessage extracts the backend message from {"detail": "..."} or
// {"detail": [{"msg": "..."}]} bodies. Plain-text bodies are returned trimmed.
func detailMessage(data []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || len(payload.Detail) == 0 {
		if json.Valid(data) {
			return ""
		}
		return strings.TrimSpace(string(data))
	}

	var s string
	if err := json.Unmarshal(payload.Detail, &s); err == nil {
		return s
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(payload.Detail, &items); err == nil && len(items) > 0 {
		return items[0].Msg
	}
	return ""
}
