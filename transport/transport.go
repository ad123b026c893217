// Package transport implements the request pipeline: an http.RoundTripper
// decorator that injects the current bearer token into every outgoing API
// call, refreshes proactively when the token is close to expiry, and on an
// authorization failure performs a coalesced refresh and replays the request
// exactly once.
//
// The pipeline only reads session state; every mutation goes through the
// session service. Composition is explicit — wrap a base transport, no
// global registration.
package transport

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	booking "github.com/roomhub/booking-go"
	"github.com/roomhub/booking-go/metrics"
	"github.com/roomhub/booking-go/session"
	"github.com/roomhub/booking-go/token"
)

// Transport decorates a base http.RoundTripper with the session pipeline.
type Transport struct {
	base      http.RoundTripper
	sessions  *session.Service
	threshold time.Duration
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

var _ http.RoundTripper = (*Transport)(nil)

// Option configures the Transport.
type Option func(*Transport)

// WithBase sets the underlying transport. Default: http.DefaultTransport.
func WithBase(rt http.RoundTripper) Option {
	return func(t *Transport) { t.base = rt }
}

// WithExpiryThreshold sets how close to expiry a token triggers a proactive
// refresh before send. Default: token.DefaultExpiryThreshold.
func WithExpiryThreshold(d time.Duration) Option {
	return func(t *Transport) { t.threshold = d }
}

// WithLogger sets a structured logger. Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(t *Transport) { t.logger = l }
}

// WithMetrics sets the Prometheus metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(t *Transport) { t.metrics = m }
}

// New creates a session-aware transport around the given session service.
func New(sessions *session.Service, opts ...Option) (*Transport, error) {
	if sessions == nil {
		return nil, fmt.Errorf("transport: session service is required")
	}

	t := &Transport{
		base:      http.DefaultTransport,
		sessions:  sessions,
		threshold: token.DefaultExpiryThreshold,
		logger:    slog.New(slog.DiscardHandler),
		metrics:   metrics.New(false),
	}
	for _, o := range opts {
		o(t)
	}
	return t, nil
}

// NewHTTPClient returns an *http.Client whose requests go through the
// session pipeline.
func NewHTTPClient(sessions *session.Service, opts ...Option) (*http.Client, error) {
	t, err := New(sessions, opts...)
	if err != nil {
		return nil, err
	}
	return &http.Client{Transport: t}, nil
}

// RoundTrip sends the request with a bearer token attached. Requests with
// no token available are sent unauthenticated. A 401 response triggers at
// most one refresh-and-replay; if the refresh yields nothing the session is
// cleared and a SessionExpiredError is returned.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	tok := t.currentToken(req)

	outgoing := req.Clone(req.Context())
	if tok != "" {
		outgoing.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := t.base.RoundTrip(outgoing)
	if err != nil {
		// Transport failures are not authorization failures: propagate
		// unchanged, no retry at this layer.
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	if !replayable(req) {
		t.logger.Debug("401 on non-replayable request, not retrying",
			"method", req.Method, "path", req.URL.Path)
		return resp, nil
	}

	t.logger.Debug("401 received, refreshing token", "method", req.Method, "path", req.URL.Path)

	refreshed, ok := t.sessions.RefreshOrLogout(req.Context())
	if !ok {
		drain(resp)
		// Provider-side logout is best effort; local state is already gone.
		_ = t.sessions.Logout(req.Context())
		t.metrics.RecordSessionExpired()
		return nil, booking.NewSessionExpiredError()
	}

	// Re-read the stored token: another waiter's refresh may have updated
	// it after ours completed.
	current, stored := t.sessions.AccessToken()
	if !stored {
		current = refreshed
	}

	drain(resp)

	retry := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("transport: rewind request body: %w", err)
		}
		retry.Body = body
	}
	retry.Header.Set("Authorization", "Bearer "+current)

	t.metrics.RecordRequestRetry()
	return t.base.RoundTrip(retry)
}

// currentToken picks the bearer token for the request: a context override
// wins; otherwise the stored access token, refreshed proactively when it is
// about to expire. A refresh that yields nothing falls back to the original
// token — the server stays the final authority.
func (t *Transport) currentToken(req *http.Request) string {
	if tok := booking.AccessTokenFromContext(req.Context()); tok != "" {
		return tok
	}

	tok, ok := t.sessions.AccessToken()
	if !ok {
		return ""
	}

	if token.ExpiringSoon(tok, t.threshold) {
		t.metrics.RecordProactiveRefresh()
		t.logger.Debug("token expiring soon, refreshing before send", "path", req.URL.Path)
		if refreshed, ok := t.sessions.RefreshOrLogout(req.Context()); ok {
			return refreshed
		}
	}
	return tok
}

// replayable reports whether the request can be sent a second time.
func replayable(req *http.Request) bool {
	return req.Body == nil || req.Body == http.NoBody || req.GetBody != nil
}

// drain discards and closes a response body so the connection can be
// reused.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
