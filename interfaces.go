package booking

import "context"

// IdentityProvider talks to an external identity service and normalizes its
// responses into AuthResult.
// Implementations: cognito/ (AWS-Cognito-compatible endpoint), fake/ (testing).
type IdentityProvider interface {
	// Login exchanges credentials for a token set and the derived user profile.
	Login(ctx context.Context, email, password string) (*AuthResult, error)

	// Signup registers a new, typically unconfirmed, account. It does not
	// establish a session: the returned AuthResult carries no tokens unless
	// the target environment auto-confirms accounts as a side effect.
	Signup(ctx context.Context, user User, password string) (*AuthResult, error)

	// Refresh exchanges a refresh token for a new access/identity token pair.
	// The identity service may omit a new refresh token; the result then
	// carries an empty one and the caller retains the previous token.
	Refresh(ctx context.Context, refreshToken string) (*AuthResult, error)

	// Logout invalidates the session on the identity-service side if the
	// provider supports it; otherwise a no-op that still resolves.
	Logout(ctx context.Context) error
}

// SessionStore persists the four session records (access token, identity
// token, refresh token, user profile) independently. No network calls.
// Implementations: store/ (file-backed and in-memory).
type SessionStore interface {
	// SaveSession writes each present field of the session as its own record.
	// An empty field never overwrites a previously stored value.
	SaveSession(s Session) error

	// AccessToken returns the stored access token, or false if unset or the
	// store is unavailable.
	AccessToken() (string, bool)

	// IDToken returns the stored identity token, or false if unset.
	IDToken() (string, bool)

	// RefreshToken returns the stored refresh token, or false if unset.
	RefreshToken() (string, bool)

	// User returns the stored user profile, or false if unset.
	User() (*User, bool)

	// Clear removes all four records unconditionally. Clearing an empty
	// store is not an error.
	Clear() error
}
