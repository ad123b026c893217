// Package session orchestrates an IdentityProvider and a SessionStore over
// the session lifecycle: login persists a session, refresh rotates tokens or
// forces a logout, logout clears everything.
//
// Only this package mutates the persisted session; the request pipeline
// reads it and triggers mutation through RefreshOrLogout.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	booking "github.com/roomhub/booking-go"
	"github.com/roomhub/booking-go/audit"
	"github.com/roomhub/booking-go/metrics"
)

// Service is the session orchestrator. It depends only on the
// IdentityProvider and SessionStore interfaces, so providers and stores are
// substitutable at construction time.
type Service struct {
	provider booking.IdentityProvider
	store    booking.SessionStore
	logger   *slog.Logger
	metrics  *metrics.Metrics
	auditLog *audit.Logger

	// refresh is a critical section: at most one provider refresh may be in
	// flight system-wide. Concurrent callers await the shared outcome, so a
	// rotated refresh token is never invalidated under other waiters.
	sf singleflight.Group
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets a structured logger. Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithMetrics sets the Prometheus metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithAudit sets an audit logger receiving session-lifecycle events.
func WithAudit(a *audit.Logger) Option {
	return func(s *Service) { s.auditLog = a }
}

// New creates a session service over the given provider and store.
func New(provider booking.IdentityProvider, store booking.SessionStore, opts ...Option) (*Service, error) {
	if provider == nil {
		return nil, fmt.Errorf("session: identity provider is required")
	}
	if store == nil {
		return nil, fmt.Errorf("session: session store is required")
	}

	s := &Service{
		provider: provider,
		store:    store,
		logger:   slog.New(slog.DiscardHandler),
		metrics:  metrics.New(false),
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Login authenticates the user and persists the resulting session.
func (s *Service) Login(ctx context.Context, email, password string) (*booking.User, error) {
	res, err := s.provider.Login(ctx, email, password)
	if err != nil {
		s.metrics.RecordLoginFailure("provider")
		s.emit(audit.Event{Action: audit.ActionLogin, Email: email, Result: "failure", Error: err.Error()})
		return nil, fmt.Errorf("session: login: %w", err)
	}

	if err := s.store.SaveSession(sessionFromResult(res)); err != nil {
		s.metrics.RecordLoginFailure("store")
		return nil, fmt.Errorf("session: persist session: %w", err)
	}

	s.metrics.RecordLogin()
	s.emit(audit.Event{Action: audit.ActionLogin, UserID: res.User.ID, Email: email, Result: "success"})
	s.logger.Debug("login succeeded", "user_id", res.User.ID, "role", res.User.Role)
	return res.User, nil
}

// Signup registers a new account. It never mutates stored session state:
// the account typically requires confirmation before a login can succeed.
func (s *Service) Signup(ctx context.Context, user booking.User, password string) (*booking.User, error) {
	res, err := s.provider.Signup(ctx, user, password)
	if err != nil {
		s.emit(audit.Event{Action: audit.ActionSignup, Email: user.Email, Result: "failure", Error: err.Error()})
		return nil, fmt.Errorf("session: signup: %w", err)
	}

	s.emit(audit.Event{Action: audit.ActionSignup, Email: user.Email, Result: "success"})
	return res.User, nil
}

// RefreshOrLogout rotates the session tokens. The outcome is binary: either
// a new access token is returned and the session stays active, or the store
// is cleared and ("", false) is returned — the caller must treat an absent
// result as "must re-authenticate".
//
// Concurrent calls are coalesced into a single provider refresh; every
// caller observes the same outcome.
func (s *Service) RefreshOrLogout(ctx context.Context) (string, bool) {
	v, _, _ := s.sf.Do("refresh", func() (any, error) {
		// Detached from the triggering request: one caller's deadline or
		// cancellation must not abort the shared refresh and log out every
		// waiter. The provider's own timeout still bounds the call.
		return s.refreshOrLogout(context.WithoutCancel(ctx)), nil
	})
	tok := v.(string)
	return tok, tok != ""
}

func (s *Service) refreshOrLogout(ctx context.Context) string {
	refreshToken, ok := s.store.RefreshToken()
	if !ok {
		s.metrics.RecordRefreshSkipped("no_token")
		s.logger.Debug("no refresh token stored, clearing session")
		_ = s.store.Clear()
		return ""
	}

	start := time.Now()
	res, err := s.provider.Refresh(ctx, refreshToken)
	if err != nil {
		s.metrics.RecordRefresh("failure", time.Since(start).Seconds())
		s.emit(audit.Event{Action: audit.ActionRefresh, Result: "failure", Error: err.Error()})
		s.logger.Warn("refresh rejected, forcing logout", "error", err)
		_ = s.store.Clear()
		return ""
	}

	sess := sessionFromResult(res)
	if sess.RefreshToken == "" {
		// Rotation withheld a new refresh token: retain the prior one.
		sess.RefreshToken = refreshToken
	}

	if err := s.store.SaveSession(sess); err != nil {
		s.metrics.RecordRefresh("failure", time.Since(start).Seconds())
		s.logger.Error("persisting refreshed session failed", "error", err)
		_ = s.store.Clear()
		return ""
	}

	s.metrics.RecordRefresh("success", time.Since(start).Seconds())
	s.emit(audit.Event{Action: audit.ActionRefresh, UserID: sess.UserID, Result: "success"})
	return sess.AccessToken
}

// AccessToken returns the stored access token, or false if there is no
// active session.
func (s *Service) AccessToken() (string, bool) {
	return s.store.AccessToken()
}

// User returns the stored user profile, or false if there is no active
// session.
func (s *Service) User() (*booking.User, bool) {
	return s.store.User()
}

// IsAuthenticated reports whether an access token is stored.
func (s *Service) IsAuthenticated() bool {
	_, ok := s.store.AccessToken()
	return ok
}

// Logout invalidates the session on the provider side (best effort) and
// unconditionally clears the store. Logging out without a session is a
// no-op.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.provider.Logout(ctx); err != nil {
		s.logger.Warn("provider logout failed, clearing local session anyway", "error", err)
	}

	if err := s.store.Clear(); err != nil {
		return fmt.Errorf("session: clear store: %w", err)
	}

	s.emit(audit.Event{Action: audit.ActionLogout, Result: "success"})
	return nil
}

func (s *Service) emit(e audit.Event) {
	if s.auditLog != nil {
		s.auditLog.Log(e)
	}
}

// sessionFromResult flattens a provider result into the persisted session
// shape. A result without a user (e.g. signup) yields token-only records.
func sessionFromResult(res *booking.AuthResult) booking.Session {
	sess := booking.Session{
		AccessToken:  res.AccessToken,
		IDToken:      res.IDToken,
		RefreshToken: res.RefreshToken,
	}
	if res.User != nil {
		sess.UserID = res.User.ID
		sess.Email = res.User.Email
		sess.Role = res.User.Role
	}
	return sess
}
