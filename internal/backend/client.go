// Package backend is the client for the anime and manga metadata API.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/anivibe/anivibe/internal/config"
)

var (
	ErrRequestFailed    = errors.New("backend request failed")
	ErrUnexpectedStatus = errors.New("backend returned an error status")
	ErrNotFound         = errors.New("not found")
	ErrDecode           = errors.New("failed to decode backend response")
)

// StatusError carries the HTTP status of a failed response.
type StatusError struct {
	Code int
	Path string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d for %s", ErrUnexpectedStatus, e.Code, e.Path)
}

// Unwrap lets errors.Is match ErrUnexpectedStatus, and ErrNotFound for 404s.
func (e *StatusError) Unwrap() []error {
	if e.Code == http.StatusNotFound {
		return []error{ErrUnexpectedStatus, ErrNotFound}
	}
	return []error{ErrUnexpectedStatus}
}

// Client issues GET requests against the backend root. It never retries or
// caches; every failure is logged and returned to the caller.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     zerolog.Logger
}

// NewClient creates a new backend client.
func NewClient(cfg config.BackendConfig, logger zerolog.Logger) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = config.DefaultBackendURL
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout(),
		},
		baseURL: base,
		logger:  logger.With().Str("component", "backend").Logger(),
	}
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Ping checks that the backend answers on the trending manga feed.
func (c *Client) Ping(ctx context.Context) error {
	var out json.RawMessage
	return c.get(ctx, "/api/manga/trending", pageParams(1, 1), &out)
}

// ProxyImageURL routes MangaDex-hosted images through the backend image
// proxy. Other URLs are returned unchanged.
func (c *Client) ProxyImageURL(raw string) string {
	if raw == "" {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil || !isMangaDexHost(u.Hostname()) {
		return raw
	}
	return c.baseURL + "/api/proxy/image?url=" + url.QueryEscape(raw)
}

func isMangaDexHost(host string) bool {
	host = strings.ToLower(host)
	return host == "mangadex.org" || strings.HasSuffix(host, ".mangadex.org")
}

func pageParams(page, limit int) url.Values {
	params := url.Values{}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	return params
}

// get performs a GET on path (relative to the API root) and decodes the JSON
// body into result.
func (c *Client) get(ctx context.Context, path string, params url.Values, result any) error {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL = fmt.Sprintf("%s?%s", reqURL, params.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("path", path).Msg("HTTP request failed")
		return fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Error().
			Int("status", resp.StatusCode).
			Str("path", path).
			Str("body", strings.TrimSpace(string(body))).
			Msg("backend API error")
		return &StatusError{Code: resp.StatusCode, Path: path}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		c.logger.Error().Err(err).Str("path", path).Msg("failed to decode response")
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}

	return nil
}

func escapeID(id string) string {
	return url.PathEscape(id)
}
