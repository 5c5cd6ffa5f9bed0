// Package upstream is the HTTP client for the remote e-commerce REST API.
//
// Every response body is an envelope of the form {"message": ..., "data": ...}.
// Successful calls decode data into the caller's value; failures come back as
// *APIError. The shopper's access token is taken from the request context.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Payphone-Digital/storefront/internal/constants"
	"github.com/Payphone-Digital/storefront/pkg/circuit"
	ctxutil "github.com/Payphone-Digital/storefront/pkg/context"
	"go.uber.org/zap"
)

const maxBackoff = 5 * time.Second

// Config configures a Client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
	Breaker    circuit.Config
	// HTTPClient is used when set; Timeout then only applies when the
	// client has none of its own.
	HTTPClient *http.Client
}

// Envelope is the body shape shared by all upstream responses.
type Envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Request describes one upstream call. Path is relative to the base URL.
// NoRetry sends the request once even when its method is idempotent.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    any
	NoRetry bool
}

type noRetryKey struct{}

// WithoutRetry marks calls made with ctx as single-attempt. Use it for writes
// whose replay is not harmless, such as a password change.
func WithoutRetry(ctx context.Context) context.Context {
	return context.WithValue(ctx, noRetryKey{}, true)
}

// RetryDisabled reports whether ctx was marked by WithoutRetry.
func RetryDisabled(ctx context.Context) bool {
	disabled, _ := ctx.Value(noRetryKey{}).(bool)
	return disabled
}

// Client talks to the upstream API. It is safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
	breakers   *circuit.Registry
	logger     *zap.Logger
}

// NewClient builds a client. A nil logger is replaced with a no-op logger.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid upstream base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid upstream base url %q", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = 200 * time.Millisecond
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	breakerCfg := cfg.Breaker
	if breakerCfg.Threshold <= 0 {
		breakerCfg = circuit.DefaultConfig()
	}
	breakerCfg.IsFailure = breakerFailure
	breakerCfg.OnStateChange = func(name string, _, to circuit.State) {
		BreakerState.WithLabelValues(name).Set(float64(to))
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	} else if httpClient.Timeout <= 0 {
		httpClient.Timeout = timeout
	}

	return &Client{
		baseURL:    base,
		httpClient: httpClient,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		breakers:   circuit.NewRegistry(breakerCfg, logger),
		logger:     logger.With(zap.String("component", "upstream")),
	}, nil
}

// Circuits reports the breaker of every endpoint group called so far.
func (c *Client) Circuits() []circuit.Snapshot {
	return c.breakers.Snapshots()
}

// Get issues a GET and decodes data into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) (string, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

// Post issues a POST with a JSON body and decodes data into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) (string, error) {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

// Put issues a PUT with a JSON body and decodes data into out.
func (c *Client) Put(ctx context.Context, path string, body, out any) (string, error) {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body}, out)
}

// Delete issues a DELETE. The upstream expects purchase ids in the body.
func (c *Client) Delete(ctx context.Context, path string, body, out any) (string, error) {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path, Body: body}, out)
}

// Do performs req and returns the envelope message. out may be nil.
func (c *Client) Do(ctx context.Context, req Request, out any) (string, error) {
	if RetryDisabled(ctx) {
		req.NoRetry = true
	}
	endpoint := endpointGroup(req.Path)
	breaker := c.breakers.Get(endpoint)

	var env *Envelope
	err := breaker.Execute(ctx, func(ctx context.Context) error {
		var err error
		env, err = c.doWithRetry(ctx, endpoint, req)
		return err
	})
	if err != nil {
		return "", err
	}

	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return env.Message, fmt.Errorf("decode upstream data for %s %s: %w", req.Method, req.Path, err)
		}
	}
	return env.Message, nil
}

// doWithRetry repeats idempotent requests after transport errors and 5xx
// with exponential backoff, unless req.NoRetry is set.
func (c *Client) doWithRetry(ctx context.Context, endpoint string, req Request) (*Envelope, error) {
	attempts := 1
	if idempotent(req.Method) && !req.NoRetry {
		attempts += c.maxRetries
	}

	backoff := c.retryDelay
	var lastErr error

	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		env, err := c.doOnce(ctx, endpoint, req)
		if err == nil {
			return env, nil
		}
		lastErr = err

		if !retryable(err) || i == attempts-1 {
			break
		}

		RetriesTotal.WithLabelValues(endpoint).Inc()
		c.logger.Warn("Upstream attempt failed, retrying",
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.Int("attempt", i+1),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		backoff = min(backoff*2, maxBackoff)
	}

	return nil, lastErr
}

func (c *Client) doOnce(ctx context.Context, endpoint string, req Request) (*Envelope, error) {
	u := c.baseURL.JoinPath(req.Path)
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		raw, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshal upstream body: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}
	httpReq.Header.Set(constants.HeaderAccept, constants.ContentTypeJSON)
	if body != nil {
		httpReq.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	}
	if token := ctxutil.GetAccessToken(ctx); token != "" {
		httpReq.Header.Set(constants.HeaderAuthorization, token)
	}
	if requestID := ctxutil.GetRequestID(ctx); requestID != "" {
		httpReq.Header.Set(constants.HeaderXRequestID, requestID)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	RequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		RequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return nil, fmt.Errorf("upstream %s %s: %w", req.Method, req.Path, err)
	}
	defer resp.Body.Close()

	RequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read upstream body: %w", err)
	}

	var env Envelope
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && resp.StatusCode < 300 {
			return nil, fmt.Errorf("decode upstream envelope: %w", err)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Message:    env.Message,
			Data:       env.Data,
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}

		// Validation failures are expected form feedback.
		if apiErr.IsValidation() {
			c.logger.Debug("Upstream validation failure",
				zap.String("path", req.Path),
				zap.Any("fields", apiErr.FieldErrors()),
			)
		} else {
			c.logger.Warn("Upstream error response",
				zap.String("method", req.Method),
				zap.String("path", req.Path),
				zap.Int("status_code", resp.StatusCode),
				zap.String("message", apiErr.Message),
			)
		}
		return nil, apiErr
	}

	return &env, nil
}

// endpointGroup is the first path segment, used for metrics labels and
// breaker names.
func endpointGroup(path string) string {
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "root"
	}
	return path
}

func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete:
		return true
	default:
		return false
	}
}
