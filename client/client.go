package client

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Defaults for the Exact Online API. Every value can be overridden
// through the EXACTLY_* environment variables.
const (
	DefaultBaseURL     = "https://start.exactonline.nl/api"
	DefaultRedirectURI = "http://localhost:8080/callback"

	requestTimeout = 30 * time.Second
)

// Config holds the provider endpoints and OAuth2 client settings.
type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// ConfigFromEnv builds a Config from the EXACTLY_* environment variables,
// falling back to the defaults where a variable is unset.
func ConfigFromEnv() Config {
	cfg := Config{
		BaseURL:      os.Getenv("EXACTLY_API_URL"),
		ClientID:     os.Getenv("EXACTLY_CLIENT_ID"),
		ClientSecret: os.Getenv("EXACTLY_CLIENT_SECRET"),
		RedirectURI:  os.Getenv("EXACTLY_REDIRECT_URI"),
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.RedirectURI == "" {
		cfg.RedirectURI = DefaultRedirectURI
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	return cfg
}

// Client talks to the accounting API: OAuth2 token grants and
// authenticated page fetches.
type Client struct {
	cfg  Config
	http *http.Client
}

// New creates a Client for the given configuration.
func New(cfg Config) *Client {
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: requestTimeout},
	}
}

// BaseURL returns the API base URL the client is configured against.
func (c *Client) BaseURL() string {
	return c.cfg.BaseURL
}

// resolveURL turns a relative API path into a full URL. Absolute URLs
// (as the provider sometimes hands back in cursors) pass through as-is.
func (c *Client) resolveURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.cfg.BaseURL + path
}

// stripBase removes the base URL prefix from a cursor URL so it can be
// replayed as a relative path on the next page request.
func (c *Client) stripBase(cursor string) string {
	return strings.TrimPrefix(cursor, c.cfg.BaseURL)
}

// readResponseBody drains and returns the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read response body")
		return nil, &TransportError{Err: fmt.Errorf("failed to read response body: %w", err)}
	}
	return body, nil
}

func closeResponseBody(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.CopyN(io.Discard, resp.Body, 1024*1024)
	if err := resp.Body.Close(); err != nil {
		log.Debug().Err(err).Msg("Failed to close response body")
	}
}
