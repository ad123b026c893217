// Package fake provides a deterministic in-memory IdentityProvider for
// testing.
//
// It mints real HS256 tokens so the token package can decode their claims,
// and exposes counters and failure switches for exercising the refresh path
// without network calls.
package fake

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"

	booking "github.com/roomhub/booking-go"
	"github.com/roomhub/booking-go/token"
)

type account struct {
	id        string
	email     string
	password  string
	groups    []string
	confirmed bool
}

// Provider implements booking.IdentityProvider entirely in memory.
type Provider struct {
	mu            sync.Mutex
	accounts      map[string]*account // email → account
	refreshTokens map[string]string   // refresh token → email
	nextID        int
	nextRefresh   int
	nextJTI       int

	secret         []byte
	tokenTTL       time.Duration
	rotateRefresh  bool
	autoConfirm    bool
	ownersGroup    string
	refreshLatency time.Duration

	failRefresh  atomic.Bool
	refreshCalls atomic.Int32
}

var _ booking.IdentityProvider = (*Provider)(nil)

// Option configures the fake provider.
type Option func(*Provider)

// WithUser adds a confirmed account.
func WithUser(email, password string, groups ...string) Option {
	return func(p *Provider) {
		p.nextID++
		p.accounts[email] = &account{
			id:        fmt.Sprintf("user-%d", p.nextID),
			email:     email,
			password:  password,
			groups:    groups,
			confirmed: true,
		}
	}
}

// WithTokenTTL sets the lifetime of minted access/identity tokens.
// Default: 1 hour.
func WithTokenTTL(d time.Duration) Option {
	return func(p *Provider) { p.tokenTTL = d }
}

// WithRefreshRotation controls whether Refresh returns a new refresh token.
// Default: true. Disable to exercise the retain-prior-token rule.
func WithRefreshRotation(rotate bool) Option {
	return func(p *Provider) { p.rotateRefresh = rotate }
}

// WithRefreshLatency makes Refresh take at least d, simulating identity
// service latency. Useful for exercising refresh coalescing.
func WithRefreshLatency(d time.Duration) Option {
	return func(p *Provider) { p.refreshLatency = d }
}

// WithSignupAutoConfirm makes Signup confirm the account and add it to the
// owners group, mimicking the test-environment side effect of the real
// provider.
func WithSignupAutoConfirm() Option {
	return func(p *Provider) { p.autoConfirm = true }
}

// New creates a fake identity provider.
func New(opts ...Option) *Provider {
	p := &Provider{
		accounts:      make(map[string]*account),
		refreshTokens: make(map[string]string),
		secret:        []byte("fake-signing-secret"),
		tokenTTL:      1 * time.Hour,
		rotateRefresh: true,
		ownersGroup:   token.DefaultOwnersGroup,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Login authenticates against the registered accounts.
func (p *Provider) Login(_ context.Context, email, password string) (*booking.AuthResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	acc, ok := p.accounts[email]
	if !ok || acc.password != password {
		return nil, fmt.Errorf("fake: %w", booking.ErrInvalidCredentials)
	}
	if !acc.confirmed {
		return nil, fmt.Errorf("fake: %w: account not confirmed", booking.ErrInvalidCredentials)
	}

	return p.issueLocked(acc)
}

// Signup registers a new unconfirmed account. No tokens are returned; with
// auto-confirm enabled the account is confirmed and added to the owners
// group as a side effect.
func (p *Provider) Signup(_ context.Context, user booking.User, password string) (*booking.AuthResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.accounts[user.Email]; exists {
		return nil, fmt.Errorf("fake: account %q already exists", user.Email)
	}

	p.nextID++
	acc := &account{
		id:       fmt.Sprintf("user-%d", p.nextID),
		email:    user.Email,
		password: password,
	}
	if p.autoConfirm {
		acc.confirmed = true
		acc.groups = []string{p.ownersGroup}
		user.Role = booking.RoleOwner
	}
	p.accounts[user.Email] = acc

	user.ID = acc.id
	return &booking.AuthResult{User: &user}, nil
}

// Refresh exchanges a refresh token for a new token pair. Calls are counted
// for single-flight assertions.
func (p *Provider) Refresh(_ context.Context, refreshToken string) (*booking.AuthResult, error) {
	p.refreshCalls.Add(1)

	if p.refreshLatency > 0 {
		time.Sleep(p.refreshLatency)
	}

	if p.failRefresh.Load() {
		return nil, fmt.Errorf("fake: %w", booking.ErrRefreshRejected)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	email, ok := p.refreshTokens[refreshToken]
	if !ok {
		return nil, fmt.Errorf("fake: %w", booking.ErrRefreshRejected)
	}
	acc := p.accounts[email]

	res, err := p.mintLocked(acc)
	if err != nil {
		return nil, err
	}
	if p.rotateRefresh {
		delete(p.refreshTokens, refreshToken)
		res.RefreshToken = p.newRefreshLocked(email)
	}
	return res, nil
}

// Logout is a no-op that always succeeds.
func (p *Provider) Logout(context.Context) error { return nil }

// FailRefresh toggles forced refresh failures.
func (p *Provider) FailRefresh(fail bool) { p.failRefresh.Store(fail) }

// RefreshCalls returns how many times Refresh was invoked.
func (p *Provider) RefreshCalls() int { return int(p.refreshCalls.Load()) }

// issueLocked mints a full token set including a fresh refresh token.
func (p *Provider) issueLocked(acc *account) (*booking.AuthResult, error) {
	res, err := p.mintLocked(acc)
	if err != nil {
		return nil, err
	}
	res.RefreshToken = p.newRefreshLocked(acc.email)
	return res, nil
}

// mintLocked mints access and identity tokens and derives the user profile
// from the identity-token claims, the same way the real provider does.
func (p *Provider) mintLocked(acc *account) (*booking.AuthResult, error) {
	now := time.Now()
	// jti makes every minted token unique even within the same second
	p.nextJTI++
	claims := jwt.MapClaims{
		"sub":   acc.id,
		"email": acc.email,
		"exp":   now.Add(p.tokenTTL).Unix(),
		"iat":   now.Unix(),
		"jti":   fmt.Sprintf("id-%d", p.nextJTI),
	}
	if len(acc.groups) > 0 {
		claims[token.GroupsClaim] = acc.groups
	}

	idToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return nil, fmt.Errorf("fake: mint id token: %w", err)
	}
	p.nextJTI++
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": acc.id,
		"exp": now.Add(p.tokenTTL).Unix(),
		"iat": now.Unix(),
		"jti": fmt.Sprintf("access-%d", p.nextJTI),
	}).SignedString(p.secret)
	if err != nil {
		return nil, fmt.Errorf("fake: mint access token: %w", err)
	}

	user, err := token.UserFromIDToken(idToken, p.ownersGroup)
	if err != nil {
		return nil, err
	}

	return &booking.AuthResult{
		User:        user,
		AccessToken: accessToken,
		IDToken:     idToken,
	}, nil
}

func (p *Provider) newRefreshLocked(email string) string {
	p.nextRefresh++
	tok := fmt.Sprintf("refresh-token-%d", p.nextRefresh)
	p.refreshTokens[tok] = email
	return tok
}
