// Package client is the HTTP client every data-fetching call goes through. Requests pass a
// request-interceptor stage before they are sent and a response-interceptor stage before the
// caller sees the outcome.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"rental-backend/pkg/api"
	"rental-backend/pkg/storage"

	"go.uber.org/zap"
)

const (
	BaseURLEnv     = "API_BASE_URL"
	DefaultBaseURL = "http://localhost:8000/api"
	DefaultTimeout = 10 * time.Second
	LoginPath      = "/login"

	maxBodySize      = 8 << 20
	maxErrorBodySize = 64 << 10
)

// BaseURLFromEnv returns API_BASE_URL, or the local default when unset.
func BaseURLFromEnv() string {
	if v := strings.TrimSpace(os.Getenv(BaseURLEnv)); v != "" {
		return v
	}
	return DefaultBaseURL
}

// Navigator moves the application to another screen.
type Navigator interface {
	Navigate(path string)
}

type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

// RequestInterceptor may modify the request before it is sent. An error aborts the call.
type RequestInterceptor func(req *http.Request) error

// ResponseInterceptor sees the outcome of every call. err is a *StatusError for non-2xx
// responses. On transport failures resp is nil. The returned error replaces err.
type ResponseInterceptor func(resp *http.Response, err error) error

type Config struct {
	BaseURL    string
	Timeout    time.Duration
	Storage    storage.Storage
	Navigator  Navigator
	Logger     *zap.Logger
	HTTPClient *http.Client
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	log        *zap.Logger

	mu       sync.RWMutex
	requests []RequestInterceptor
	results  []ResponseInterceptor
}

// New builds a client with the bearer-token request interceptor and the 401 session
// teardown response interceptor installed.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = BaseURLFromEnv()
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Storage == nil {
		cfg.Storage = storage.NewMemory()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	// copied so the caller's client, possibly http.DefaultClient, keeps its own timeout
	httpClient := &http.Client{}
	if cfg.HTTPClient != nil {
		hc := *cfg.HTTPClient
		httpClient = &hc
	}
	httpClient.Timeout = cfg.Timeout

	c := &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		log:        cfg.Logger,
	}
	c.UseRequest(BearerToken(cfg.Storage))
	c.UseResponse(SessionTeardown(cfg.Storage, cfg.Navigator, cfg.Logger))
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// UseRequest appends a request interceptor. Interceptors run in registration order.
func (c *Client) UseRequest(i RequestInterceptor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, i)
}

// UseResponse appends a response interceptor. Interceptors run in registration order.
func (c *Client) UseResponse(i ResponseInterceptor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, i)
}

// Do sends a JSON request to baseURL+path and decodes a 2xx body into out when out is not nil.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var bodyReader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.mu.RLock()
	requests := append([]RequestInterceptor(nil), c.requests...)
	results := append([]ResponseInterceptor(nil), c.results...)
	c.mu.RUnlock()

	for _, intercept := range requests {
		if err := intercept(req); err != nil {
			return err
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		resp = nil
		err = fmt.Errorf("%s %s: %w", method, path, err)
	} else {
		defer resp.Body.Close()

		c.log.Debug("request completed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.Duration("latency", time.Since(start)),
		)
		err = decodeResponse(resp, out)
	}

	for _, intercept := range results {
		err = intercept(resp, err)
	}
	return err
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, out)
}

func decodeResponse(resp *http.Response, out any) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		if err != nil {
			return fmt.Errorf("read error response body: %w", err)
		}
		return newStatusError(resp.StatusCode, raw)
	}

	if out == nil {
		if _, err := io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize)); err != nil {
			return fmt.Errorf("discard response body: %w", err)
		}
		return nil
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	if len(raw) > maxBodySize {
		return fmt.Errorf("response body exceeds %d bytes", maxBodySize)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// StatusError is returned for every non-2xx response.
type StatusError struct {
	StatusCode int
	Message    string
	Entity     string
}

func newStatusError(code int, raw []byte) *StatusError {
	e := &StatusError{StatusCode: code}

	var body api.ErrorBody
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		e.Message = body.Error
		e.Entity = body.Entity
		return e
	}

	e.Message = strings.TrimSpace(string(raw))
	if e.Message == "" {
		e.Message = http.StatusText(code)
	}
	return e
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Message)
}

// IsStatus reports whether err carries the given HTTP status.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

// Message returns the server-provided message of err, or err.Error() for transport failures.
func Message(err error) string {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Message
	}
	return err.Error()
}
