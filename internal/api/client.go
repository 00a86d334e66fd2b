// Package api implements the HTTP client for the chat backend.
package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/diogo/chatwidget/internal/models"
)

// ChatClientInterface is the contract the widget and commands depend on
type ChatClientInterface interface {
	SendChat(ctx context.Context, req *models.ChatRequest) (*models.ChatResponse, error)
	Endpoint() string
}

// Client talks to a single backend exposing POST /chat
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	headers    map[string]string
	timeout    time.Duration
	logger     zerolog.Logger
}

// Ensure Client implements ChatClientInterface
var _ ChatClientInterface = (*Client)(nil)

// ClientOption is a function that configures the client
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds every request. Zero leaves requests unbounded.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithHeader adds a header sent with every request
func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.headers[key] = value
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client for the backend rooted at baseURL
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	u, err := ParseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	client := &Client{
		httpClient: &http.Client{},
		baseURL:    u,
		headers:    models.DefaultHeaders(),
		logger:     zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// ParseBaseURL validates a backend base URL
func ParseBaseURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: missing host", raw)
	}

	return u, nil
}

// Endpoint returns the absolute URL of the chat endpoint
func (c *Client) Endpoint() string {
	return c.baseURL.JoinPath(models.EndpointChat).String()
}
