// Package transport is the single HTTP client every resource module talks
// through. It attaches the stored bearer token to each request and clears
// that token when the server answers 401. It does not retry, back off or
// coalesce requests: every call is independent.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// DefaultTimeout bounds every request unless WithTimeout says otherwise.
const DefaultTimeout = 30 * time.Second

// RequestIDHeader carries a per-request UUID for server-side correlation.
const RequestIDHeader = "X-Request-ID"

// maxErrorBody caps how much of a failed response is read for its message.
const maxErrorBody = 64 << 10

// TokenStore is the credential slot the client reads before every request
// and clears on 401.
type TokenStore interface {
	Get(ctx context.Context) string
	Clear(ctx context.Context)
}

// Client issues JSON requests against the API base URL.
type Client struct {
	base       *url.URL
	http       *http.Client
	tokens     TokenStore
	log        *zap.Logger
	timeout    time.Duration
	timeoutSet bool
	metrics    prometheus.Registerer
	caFile     string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
		c.timeoutSet = true
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithMetrics instruments the round tripper and registers its collectors with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *Client) { c.metrics = reg }
}

// WithRootCAs trusts the PEM certificates in caFile in addition to the system pool.
func WithRootCAs(caFile string) Option {
	return func(c *Client) { c.caFile = caFile }
}

// New returns a Client for apiBase, e.g. "https://host/api".
// tokens may be nil for unauthenticated use.
func New(apiBase string, tokens TokenStore, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(apiBase, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api base: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api base %q is not absolute", apiBase)
	}

	c := &Client{
		base:    u,
		tokens:  tokens,
		log:     zap.NewNop(),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.http == nil {
		tr := http.DefaultTransport.(*http.Transport).Clone()
		if c.caFile != "" {
			tlsCfg, err := loadRootCAs(c.caFile)
			if err != nil {
				return nil, err
			}
			tr.TLSClientConfig = tlsCfg
		}
		c.http = &http.Client{Transport: tr}
	}

	// Work on a copy so a caller-supplied client is never mutated.
	hc := *c.http
	if hc.Timeout == 0 || c.timeoutSet {
		hc.Timeout = c.timeout
	}
	if c.metrics != nil {
		rt, err := instrument(c.metrics, hc.Transport)
		if err != nil {
			return nil, err
		}
		hc.Transport = rt
	}
	c.http = &hc
	return c, nil
}

// BaseURL returns the API base the client was built with.
func (c *Client) BaseURL() string { return c.base.String() }

// Get issues a GET and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

// Post issues a POST with body encoded as JSON.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

// Put issues a PUT with body encoded as JSON.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, nil, body, out)
}

// Patch issues a PATCH with body encoded as JSON.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPatch, path, nil, body, out)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, out)
}

// Do sends one request. A nil body sends no payload; a nil out discards the
// response body. Any failure is returned as *APIError.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	op := method + " " + path

	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return &APIError{Kind: KindUnknown, Op: op, Err: err}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", req.Header.Get(RequestIDHeader)),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return classify(op, err)
	}
	defer resp.Body.Close()

	c.log.Debug("request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", req.Header.Get(RequestIDHeader)),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode == http.StatusUnauthorized && c.tokens != nil {
		c.tokens.Clear(ctx)
		c.log.Info("credential cleared after 401", zap.String("path", path))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{
			Kind:    KindForStatus(resp.StatusCode),
			Status:  resp.StatusCode,
			Message: serverMessage(data),
			Op:      op,
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{Kind: KindDecode, Status: resp.StatusCode, Op: op, Err: fmt.Errorf("invalid response: %w", err)}
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	u := *c.base
	u.Path = strings.TrimRight(c.base.Path, "/") + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())
	if c.tokens != nil {
		if token := c.tokens.Get(ctx); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}
