package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "transport").Logger()

const (
	DefaultRetries     = 3
	DefaultTimeout     = 10 * time.Second
	DefaultBackoffBase = 300 * time.Millisecond
)

// TokenSource supplies the bearer token attached to outgoing requests.
// The second return value is false when no token is currently readable.
type TokenSource interface {
	Token() (string, bool)
}

// TokenFunc adapts a plain function to a TokenSource.
type TokenFunc func() (string, bool)

func (f TokenFunc) Token() (string, bool) { return f() }

// UnauthorizedPolicy runs once per logical request when the backend answers
// 401. The default configuration clears local credentials; pass
// IgnoreUnauthorized to opt out (needed to break redirect loops while
// debugging a broken session).
type UnauthorizedPolicy func()

// IgnoreUnauthorized leaves local credentials untouched on a 401 response.
func IgnoreUnauthorized() {}

type Config struct {
	// BaseURL is the origin relative request paths resolve against.
	// Absolute request URLs bypass it.
	BaseURL string

	// Tokens is optional; without it requests go out unauthenticated
	// (cookies are still sent).
	Tokens TokenSource

	// OnUnauthorized is optional; nil means 401 responses carry no local
	// side effect.
	OnUnauthorized UnauthorizedPolicy

	Retries     int           // attempts = 1 + Retries; 0 uses DefaultRetries
	Timeout     time.Duration // per-attempt budget; 0 uses DefaultTimeout
	BackoffBase time.Duration // first retry delay; 0 uses DefaultBackoffBase

	// Sleep and HTTPClient exist for tests; nil selects real implementations.
	Sleep      Sleeper
	HTTPClient *http.Client
}

// Client performs one logical request per Do call: bounded retries, a hard
// per-attempt timeout, bearer/cookie auth, JSON bodies in and out.
type Client struct {
	baseURL        string
	tokens         TokenSource
	onUnauthorized UnauthorizedPolicy
	retries        int
	timeout        time.Duration
	backoffBase    time.Duration
	sleep          Sleeper
	http           *http.Client
}

func New(cfg Config) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		tokens:         cfg.Tokens,
		onUnauthorized: cfg.OnUnauthorized,
		retries:        cfg.Retries,
		timeout:        cfg.Timeout,
		backoffBase:    cfg.BackoffBase,
		sleep:          cfg.Sleep,
		http:           cfg.HTTPClient,
	}
	if c.retries == 0 {
		c.retries = DefaultRetries
	}
	if c.timeout == 0 {
		c.timeout = DefaultTimeout
	}
	if c.backoffBase == 0 {
		c.backoffBase = DefaultBackoffBase
	}
	if c.sleep == nil {
		c.sleep = sleepContext
	}
	if c.http == nil {
		jar, _ := cookiejar.New(nil)
		c.http = &http.Client{Jar: jar}
	}
	return c
}

// CallOption overrides retry/timeout settings for a single Do call.
type CallOption func(*callSettings)

type callSettings struct {
	retries int
	timeout time.Duration
}

// WithRetries overrides the retry count for one call. Pass 0 to disable
// retries entirely.
func WithRetries(n int) CallOption {
	return func(s *callSettings) { s.retries = n }
}

// WithTimeout overrides the per-attempt timeout for one call.
func WithTimeout(d time.Duration) CallOption {
	return func(s *callSettings) { s.timeout = d }
}

// Do executes one logical request and returns the raw JSON response body
// (nil for an empty 2xx response). Failures surface as *HTTPError,
// *NetworkError or *TimeoutError; network, timeout and 5xx failures are
// retried with exponential backoff before the last error is returned.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body any, opts ...CallOption) (json.RawMessage, error) {
	settings := callSettings{retries: c.retries, timeout: c.timeout}
	for _, opt := range opts {
		opt(&settings)
	}

	fullURL, err := c.resolveURL(path, query)
	if err != nil {
		return nil, err
	}

	var payload []byte
	if body != nil {
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, err
		}
	}

	requestID := uuid.NewString()
	attempts := 1 + settings.retries

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := backoffDelay(c.backoffBase, attempt-1)
			logger.Debug().
				Str("requestId", requestID).
				Int("attempt", attempt).
				Dur("delay", delay).
				Msg("retrying request")
			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}

		raw, err := c.attempt(ctx, method, fullURL, payload, requestID, settings.timeout)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !IsRetryable(err) {
			return nil, err
		}
		logger.Warn().
			Str("requestId", requestID).
			Str("method", method).
			Str("url", fullURL).
			Err(err).
			Msg("attempt failed")
	}
	return nil, lastErr
}

func (c *Client) attempt(ctx context.Context, method, fullURL string, payload []byte, requestID string, timeout time.Duration) (json.RawMessage, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(attemptCtx, method, fullURL, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Request-Id", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token, ok := c.tokens.Token(); ok && token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if attemptCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
			return nil, &TimeoutError{}
		}
		return nil, &NetworkError{Cause: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		if attemptCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
			return nil, &TimeoutError{}
		}
		return nil, &NetworkError{Cause: err}
	}

	if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
		c.onUnauthorized()
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newHTTPError(resp.StatusCode, raw)
	}

	if len(raw) == 0 {
		return nil, nil
	}
	if !json.Valid(raw) {
		return nil, &HTTPError{Status: resp.StatusCode, Message: "unparseable response body"}
	}
	return raw, nil
}

func (c *Client) resolveURL(path string, query url.Values) (string, error) {
	full := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		if c.baseURL == "" {
			return "", errors.New("relative path with no base URL configured")
		}
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		full = c.baseURL + path
	}
	if len(query) > 0 {
		full += "?" + query.Encode()
	}
	return full, nil
}

func newHTTPError(status int, raw []byte) *HTTPError {
	e := &HTTPError{Status: status}
	if len(raw) == 0 {
		return e
	}
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		e.Body = string(raw)
		return e
	}
	e.Body = parsed
	if obj, ok := parsed.(map[string]any); ok {
		if msg, ok := obj["message"].(string); ok {
			e.Message = msg
		}
	}
	return e
}
