// Package api is the typed client for the clinic REST API. One service per
// resource wraps a shared Client that owns the base URL, the fixed request
// timeout, and credential forwarding. Write operations normalize dates and
// generate business identifiers before transmission; nothing retries on
// failure.
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
)

// UnauthorizedSentinel is the message the API attaches to requests made
// without a valid session. Structured status detection comes first; the
// sentinel remains as a fallback for responses that reach us without a
// usable status code.
const UnauthorizedSentinel = "Please login (10001)"

// DefaultTimeout bounds every request when the config does not say otherwise.
const DefaultTimeout = 15 * time.Second

// Error is a non-2xx response from the clinic API.
type Error struct {
	Status  int
	Message string
	Method  string
	Path    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("clinic api: %s %s: status=%d: %s", e.Method, e.Path, e.Status, e.Message)
}

// IsUnauthorized reports whether err represents the unauthorized failure
// class that must trigger re-authentication.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusUnauthorized || apiErr.Message == UnauthorizedSentinel
}

// credentialsKey carries the browser's Cookie header through the context so
// that API calls are made on behalf of the signed-in session.
type credentialsKey struct{}

// WithCredentials returns a context whose API calls forward the given Cookie
// header value.
func WithCredentials(ctx context.Context, cookie string) context.Context {
	if cookie == "" {
		return ctx
	}
	return context.WithValue(ctx, credentialsKey{}, cookie)
}

func credentialsFrom(ctx context.Context) string {
	s, _ := ctx.Value(credentialsKey{}).(string)
	return s
}

// Config configures a Client.
type Config struct {
	// BaseURL is the API root, e.g. http://localhost:8080/api.
	BaseURL string
	// Timeout is the fixed per-request timeout; DefaultTimeout when zero.
	Timeout time.Duration
	// HTTPClient is optional and defaults to a client with Timeout set.
	HTTPClient *http.Client
}

// Client is the shared HTTP plumbing under the per-resource services.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client from cfg.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
	}
}

// BaseURL returns the configured API root without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

type errorBody struct {
	Message string `json:"message"`
}

// call performs one JSON request. body, when non-nil, is marshaled as the
// request payload; out, when non-nil, receives the decoded response body.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s %s: encode request: %w", method, path, err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, payload)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if creds := credentialsFrom(ctx); creds != "" {
		req.Header.Set("Cookie", creds)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read response: %w", method, path, err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &Error{Status: resp.StatusCode, Method: method, Path: path}
		var eb errorBody
		if json.Unmarshal(data, &eb) == nil && eb.Message != "" {
			apiErr.Message = eb.Message
		} else {
			apiErr.Message = strings.TrimSpace(string(data))
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("%s %s: decode response: %w", method, path, err)
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.call(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.call(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) put(ctx context.Context, path string, body, out any) error {
	return c.call(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.call(ctx, http.MethodDelete, path, nil, nil, nil)
}
