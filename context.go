package booking

import "context"

type ctxKey string

const (
	ctxKeyUser        ctxKey = "booking_user"
	ctxKeyAccessToken ctxKey = "booking_access_token"
)

// WithUser stores the authenticated user in the context.
func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, ctxKeyUser, u)
}

// UserFromContext extracts the authenticated user from the context.
func UserFromContext(ctx context.Context) *User {
	v, _ := ctx.Value(ctxKeyUser).(*User)
	return v
}

// WithAccessToken stores a bearer token in the context. The request pipeline
// prefers it over the stored session token when present.
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, ctxKeyAccessToken, token)
}

// AccessTokenFromContext extracts a bearer token from the context.
func AccessTokenFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyAccessToken).(string)
	return v
}
