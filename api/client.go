// Package api provides typed clients for the booking backend REST API.
//
// The client never touches tokens itself: pass it an http.Client built by the
// transport package and authentication, proactive refresh, and retry all
// happen underneath. Non-2xx responses become *booking.APIError; an expired
// session surfaces as *booking.SessionExpiredError from the pipeline.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	booking "github.com/roomhub/booking-go"
)

// Client is the entry point to the backend API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger

	properties *PropertiesService
	rooms      *RoomsService
	media      *MediaService
	search     *SearchService
}

// Option configures the Client.
type Option func(*Client)

// WithLogger sets a structured logger. Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates an API client. httpClient should carry the session transport so
// calls are authenticated; a plain client works for public endpoints such as
// search.
func New(baseURL string, httpClient *http.Client, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("api: base URL is required")
	}
	if httpClient == nil {
		return nil, fmt.Errorf("api: http client is required")
	}

	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(c)
	}

	c.properties = &PropertiesService{client: c}
	c.rooms = &RoomsService{client: c}
	c.media = &MediaService{client: c}
	c.search = &SearchService{client: c}
	return c, nil
}

// Properties returns the property listings service.
func (c *Client) Properties() *PropertiesService { return c.properties }

// Rooms returns the rooms service.
func (c *Client) Rooms() *RoomsService { return c.rooms }

// Media returns the media service.
func (c *Client) Media() *MediaService { return c.media }

// Search returns the public search service.
func (c *Client) Search() *SearchService { return c.search }

// do issues a JSON request and decodes the response into out (skipped when
// out is nil). Non-2xx responses become *booking.APIError with the backend's
// message when it sent one.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("api: encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("api: create %s %s: %w", method, path, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.apiError(method, path, resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api: decode %s %s response: %w", method, path, err)
	}
	return nil
}

// apiError turns an error response into *booking.APIError, preferring the
// backend's own message field.
func (c *Client) apiError(method, path string, resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	message := http.StatusText(resp.StatusCode)
	if err := json.Unmarshal(data, &payload); err == nil {
		switch {
		case payload.Message != "":
			message = payload.Message
		case payload.Error != "":
			message = payload.Error
		}
	}

	c.logger.Debug("api request failed",
		"method", method, "path", path, "status", resp.StatusCode, "message", message)
	return &booking.APIError{Status: resp.StatusCode, Message: message}
}
