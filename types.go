package booking

import "time"

// Role classifies what a user may do on the booking platform.
type Role string

const (
	RoleGuest Role = "GUEST"
	RoleOwner Role = "OWNER"
	RoleAdmin Role = "ADMIN"
)

// User is the profile of an authenticated user, derived from the claims of
// the identity token at login/refresh time.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Role        Role   `json:"role"`
	DisplayName string `json:"display_name,omitempty"`
}

// Session holds the credentials and profile of an active session.
// AccessToken is always present while the session is active. RefreshToken
// may be empty after a rotation that withheld a new one; the previously
// stored refresh token is retained in that case.
type Session struct {
	UserID       string
	Email        string
	Role         Role
	AccessToken  string
	IDToken      string
	RefreshToken string
}

// AuthResult is the normalized outcome of an IdentityProvider operation.
// IDToken and RefreshToken may be empty depending on the operation and the
// provider; a provider never fabricates a token the identity service did
// not return.
type AuthResult struct {
	User         *User
	AccessToken  string
	IDToken      string
	RefreshToken string
}

// Claims represents the decoded payload of a bearer token.
type Claims struct {
	Subject   string
	Email     string
	Groups    []string
	ExpiresAt time.Time
	IssuedAt  time.Time
	Extra     map[string]any
}
