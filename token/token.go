// Package token decodes bearer-token claims and decides token freshness.
//
// Tokens are decoded without signature verification: the identity provider is
// the authority on validity, the client only reads claims to derive the user
// profile and the expiry. Verification happens server-side on every API call.
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	booking "github.com/roomhub/booking-go"
)

// DefaultExpiryThreshold is how close to expiry a token must be before the
// request pipeline refreshes it proactively.
const DefaultExpiryThreshold = 60 * time.Second

// GroupsClaim is the identity-token claim carrying group memberships.
const GroupsClaim = "cognito:groups"

// DefaultOwnersGroup is the group whose members get the elevated role.
const DefaultOwnersGroup = "OWNERS"

// Decode extracts the claims from a token payload. Malformed input returns
// an error wrapping booking.ErrTokenMalformed.
func Decode(raw string) (*booking.Claims, error) {
	mapClaims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, mapClaims); err != nil {
		return nil, fmt.Errorf("token: %w: %s", booking.ErrTokenMalformed, err)
	}

	claims := &booking.Claims{Extra: make(map[string]any)}

	if sub, ok := mapClaims["sub"].(string); ok {
		claims.Subject = sub
	}
	if email, ok := mapClaims["email"].(string); ok {
		claims.Email = email
	}
	if groups, ok := mapClaims[GroupsClaim].([]any); ok {
		claims.Groups = make([]string, 0, len(groups))
		for _, g := range groups {
			if s, ok := g.(string); ok {
				claims.Groups = append(claims.Groups, s)
			}
		}
	}
	if exp, ok := mapClaims["exp"].(float64); ok {
		claims.ExpiresAt = time.Unix(int64(exp), 0)
	}
	if iat, ok := mapClaims["iat"].(float64); ok {
		claims.IssuedAt = time.Unix(int64(iat), 0)
	}

	for key, value := range mapClaims {
		switch key {
		case "sub", "email", GroupsClaim, "exp", "iat", "aud", "iss", "nbf", "jti":
		default:
			claims.Extra[key] = value
		}
	}

	return claims, nil
}

// ExpiringSoon reports whether the token expires within threshold.
// Already-expired tokens return true. Undecodable tokens also return true:
// the request path fails safe toward a refresh instead of crashing, and the
// server stays the final authority.
func ExpiringSoon(raw string, threshold time.Duration) bool {
	claims, err := Decode(raw)
	if err != nil {
		return true
	}
	if claims.ExpiresAt.IsZero() {
		return true
	}
	return time.Until(claims.ExpiresAt) < threshold
}

// RoleFromGroups derives the user role from group memberships: membership in
// ownersGroup maps to the elevated owner role, anything else to the default
// guest role.
func RoleFromGroups(groups []string, ownersGroup string) booking.Role {
	if ownersGroup == "" {
		ownersGroup = DefaultOwnersGroup
	}
	for _, g := range groups {
		if g == ownersGroup {
			return booking.RoleOwner
		}
	}
	return booking.RoleGuest
}

// UserFromIDToken builds the user profile from identity-token claims.
// It fails if the token cannot be decoded or carries no subject.
func UserFromIDToken(idToken, ownersGroup string) (*booking.User, error) {
	claims, err := Decode(idToken)
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("token: %w: missing sub claim", booking.ErrTokenMalformed)
	}
	return &booking.User{
		ID:    claims.Subject,
		Email: claims.Email,
		Role:  RoleFromGroups(claims.Groups, ownersGroup),
	}, nil
}
