package rest

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

	"github.com/agrilink-hq/agrilink-client/pkg/envelope"
	pkgerrors "github.com/agrilink-hq/agrilink-client/pkg/errors"
	"github.com/agrilink-hq/agrilink-client/pkg/logger"
	"github.com/agrilink-hq/agrilink-client/pkg/metrics"
	"github.com/google/uuid"
)

const (
	defaultTimeout             = 15 * time.Second
	defaultUserAgent           = "agrilink-client/1.0"
	responseBodyLimit    int64 = 4 << 20
	errorBodyReadLimit   int64 = 4096
	headerRequestID            = "X-Request-ID"
	headerIdempotencyKey       = "Idempotency-Key"
)

// TokenSource supplies the bearer token for authenticated calls. An empty
// string means the request goes out unauthenticated.
type TokenSource interface {
	AccessToken(ctx context.Context) string
}

// Client is the shared HTTP core every AgriLink service client is built on.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	tokens     TokenSource
	log        *logger.Logger
	metrics    *metrics.HTTPClientMetrics
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if strings.TrimSpace(ua) != "" {
			c.userAgent = ua
		}
	}
}

// WithTokenSource attaches the session token source.
func WithTokenSource(tokens TokenSource) Option {
	return func(c *Client) {
		c.tokens = tokens
	}
}

// WithLogger attaches a structured logger.
func WithLogger(log *logger.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// WithMetrics attaches outbound request metrics.
func WithMetrics(m *metrics.HTTPClientMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient builds a client rooted at the backend gateway base URL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "base URL is required")
	}
	if _, err := url.Parse(trimmed); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parse base URL")
	}

	client := &Client{
		baseURL:    strings.TrimRight(trimmed, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		userAgent:  defaultUserAgent,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return client, nil
}

// Get issues a GET and returns the raw response body.
func (c *Client) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, query, nil, "")
}

// Post issues a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) ([]byte, error) {
	return c.do(ctx, http.MethodPost, path, nil, body, "")
}

// PostIdempotent issues a POST carrying an idempotency key header so a
// replayed migration item cannot double-insert server side.
func (c *Client) PostIdempotent(ctx context.Context, path string, body any, key string) ([]byte, error) {
	return c.do(ctx, http.MethodPost, path, nil, body, key)
}

// Put issues a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any) ([]byte, error) {
	return c.do(ctx, http.MethodPut, path, nil, body, "")
}

// Patch issues a PATCH with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body any) ([]byte, error) {
	return c.do(ctx, http.MethodPatch, path, nil, body, "")
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, http.MethodDelete, path, nil, nil, "")
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, idempotencyKey string) ([]byte, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "rest client not configured")
	}

	target := c.buildURL(path)
	if len(query) > 0 {
		target = target + "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "marshal request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build request")
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(headerRequestID, uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idempotencyKey != "" {
		req.Header.Set(headerIdempotencyKey, idempotencyKey)
	}
	if c.tokens != nil {
		if token := c.tokens.AccessToken(ctx); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.IncFailure(path, method)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("%s %s failed", method, path))
	}
	defer func() { _ = resp.Body.Close() }()

	c.metrics.ObserveRequest(path, method, resp.StatusCode, time.Since(started))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		code := pkgerrors.FromStatus(resp.StatusCode)
		msg := envelope.ErrorMessage(raw)
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		if c.log != nil {
			c.log.Warn(c.log.WithEndpoint(ctx, path), fmt.Sprintf("%s %s returned %d", method, path, resp.StatusCode))
		}
		return nil, pkgerrors.New(code, msg).WithDetails(resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyLimit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read response body")
	}
	return raw, nil
}

func (c *Client) buildURL(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}
