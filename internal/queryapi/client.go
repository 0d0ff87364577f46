// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package queryapi is the HTTP client for the semantic-cache query service.
package queryapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Configuration constants for the query service.
const (
	// DefaultBaseURL is where the service listens by default.
	DefaultBaseURL = "http://localhost:8000"

	// QueryPath is the answer endpoint.
	QueryPath = "/api/query"

	// DefaultHealthPath is the health endpoint.
	DefaultHealthPath = "/health"

	// MaxResponseSize is the maximum allowed response body size.
	// SECURITY: Response size limit prevents memory exhaustion.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB limit

	// maxErrorBodyLog bounds how much of an error body is kept for logging.
	maxErrorBodyLog = 256

	userAgent = "semchat/1.0"
)

// PERFORMANCE: Connection pooling reduces TCP handshake overhead.
// No client-level timeout; callers opt in with WithTimeout.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	},
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the query service. A Client is safe for concurrent use once
// configured.
type Client struct {
	baseURL    string
	healthPath string
	httpClient *http.Client
	timeout    time.Duration
	logger     zerolog.Logger
}

// NewClient creates a client for the service at baseURL.
// An empty baseURL selects DefaultBaseURL.
func NewClient(baseURL string) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimSuffix(strings.TrimSpace(baseURL), "/"),
		healthPath: DefaultHealthPath,
		httpClient: sharedHTTPClient,
		logger:     zerolog.Nop(),
	}
}

// WithTimeout bounds each request. Zero disables the timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.timeout = timeout
	if timeout > 0 {
		c.httpClient = &http.Client{
			Transport: sharedHTTPClient.Transport,
			Timeout:   timeout,
		}
	} else {
		c.httpClient = sharedHTTPClient
	}
	return c
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.httpClient = hc
	}
	return c
}

// WithHealthPath sets the path of the health endpoint.
func (c *Client) WithHealthPath(path string) *Client {
	if path != "" {
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		c.healthPath = path
	}
	return c
}

// WithLogger sets the logger used for request tracing.
func (c *Client) WithLogger(logger zerolog.Logger) *Client {
	c.logger = logger.With().Str("component", "queryapi").Logger()
	return c
}

// BaseURL returns the service base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Timeout returns the per-request timeout (zero means none).
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Port returns the port the service is expected on.
func (c *Client) Port() string {
	return PortOf(c.baseURL)
}

// PortOf extracts the port from a base URL, falling back to the scheme's
// well-known port. It returns "" when baseURL has no host.
func PortOf(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return ""
	}
	if _, port, err := net.SplitHostPort(u.Host); err == nil && port != "" {
		return port
	}
	if u.Scheme == "https" {
		return "443"
	}
	return "80"
}

// =============================================================================
// QUERY
// =============================================================================

// Query sends one question to the service. It makes exactly one HTTP request
// with forceRefresh set to false.
//
// Errors are one of *TransportError, *ServiceError or *MalformedResponseError.
func (c *Client) Query(ctx context.Context, text string) (*QueryResponse, error) {
	bodyBytes, err := json.Marshal(QueryRequest{Query: text, ForceRefresh: false})
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("failed to marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+QueryPath, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	body, status, err := c.do(req)
	if err != nil {
		return nil, err
	}

	if status < 200 || status > 299 {
		return nil, &ServiceError{Status: status, Body: truncateBody(body)}
	}

	var wire wireResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, &MalformedResponseError{Reason: "invalid JSON", Err: err}
	}
	return wire.validate()
}

// =============================================================================
// HEALTH
// =============================================================================

// Health fetches the service health report.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+c.healthPath, nil)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	body, status, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, &ServiceError{Status: status, Body: truncateBody(body)}
	}

	var health HealthStatus
	if err := json.Unmarshal(body, &health); err != nil {
		return nil, &MalformedResponseError{Reason: "invalid health JSON", Err: err}
	}
	if health.Status == "" {
		return nil, &MalformedResponseError{Reason: "missing status"}
	}
	return &health, nil
}

// =============================================================================
// TRANSPORT
// =============================================================================

// do performs the request and reads the bounded body.
func (c *Client) do(req *http.Request) ([]byte, int, error) {
	c.logRequest(req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("path", req.URL.Path).Dur("duration", time.Since(start)).Msg("request failed")
		return nil, 0, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	c.logResponse(req, resp, time.Since(start))

	body, err := readResponse(resp)
	if err != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, resp.StatusCode, nil
		}
		return nil, resp.StatusCode, &MalformedResponseError{Reason: "unreadable body", Err: err}
	}
	return body, resp.StatusCode, nil
}

// readResponse reads the response body with size limits.
//
// SECURITY: Response size limit prevents memory exhaustion.
func readResponse(resp *http.Response) ([]byte, error) {
	limitedReader := io.LimitReader(resp.Body, MaxResponseSize+1)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

func truncateBody(body []byte) string {
	if len(body) > maxErrorBodyLog {
		return string(body[:maxErrorBodyLog])
	}
	return string(body)
}

// logRequest logs method and path only; request bodies carry user text.
func (c *Client) logRequest(req *http.Request) {
	c.logger.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Msg("service request")
}

// logResponse logs status and duration; never the body.
func (c *Client) logResponse(req *http.Request, resp *http.Response, duration time.Duration) {
	c.logger.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("duration", duration).
		Msg("service response")
}
