package booking

import (
	"errors"
	"fmt"
)

// Sentinel errors for the authentication flow. Wrap them with fmt.Errorf and
// %w; callers match with errors.Is.
var (
	// ErrInvalidCredentials reports a rejected email/password pair. Never
	// retried; surfaced to the caller.
	ErrInvalidCredentials = errors.New("booking: invalid credentials")

	// ErrNoIdentityToken reports an identity-service response that lacks a
	// usable identity token.
	ErrNoIdentityToken = errors.New("booking: identity service returned no identity token")

	// ErrRefreshRejected reports a refresh token that is invalid, revoked,
	// or expired. Triggers a forced logout.
	ErrRefreshRejected = errors.New("booking: refresh token rejected")

	// ErrTokenMalformed reports a token whose payload could not be decoded.
	// The freshness check treats it as "assume expiring"; elsewhere it is
	// surfaced.
	ErrTokenMalformed = errors.New("booking: malformed token")
)

// SessionExpiredError is returned by the request pipeline when an
// authorization failure could not be recovered by a refresh. Local session
// state is always cleared before this error reaches the caller, so the UI
// never observes a stale-but-unusable session.
type SessionExpiredError struct {
	Status     int    `json:"status"`
	Message    string `json:"message"`
	ForceLogin bool   `json:"forceLogin"`
}

// NewSessionExpiredError returns the canonical unrecoverable-session error.
func NewSessionExpiredError() *SessionExpiredError {
	return &SessionExpiredError{
		Status:     401,
		Message:    "Session expired. Please log in again.",
		ForceLogin: true,
	}
}

func (e *SessionExpiredError) Error() string {
	return fmt.Sprintf("booking: %s (status %d)", e.Message, e.Status)
}

// IsSessionExpired reports whether err is (or wraps) a SessionExpiredError.
func IsSessionExpired(err error) bool {
	var se *SessionExpiredError
	return errors.As(err, &se)
}

// APIError is a non-authorization failure from the backend REST API. It is
// propagated unchanged; the pipeline never retries it.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("booking: api error %d: %s", e.Status, e.Message)
}
