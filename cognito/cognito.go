// Package cognito provides an IdentityProvider implementation for an
// AWS-Cognito-compatible identity endpoint, speaking the Cognito JSON wire
// protocol directly over HTTP. It works against real Cognito and against
// LocalStack.
package cognito

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	booking "github.com/roomhub/booking-go"
	"github.com/roomhub/booking-go/token"
)

const target = "AWSCognitoIdentityProviderService."

// Config holds the identity-endpoint connection settings.
type Config struct {
	// Region is the AWS region, e.g. "us-east-1".
	Region string

	// Endpoint overrides the Cognito endpoint URL. If empty, the regional
	// AWS endpoint is used. Point it at LocalStack for local development.
	Endpoint string

	// ClientID is the Cognito app client ID.
	ClientID string

	// UserPoolID is required only for the admin calls used by auto-confirm.
	UserPoolID string
}

// Provider implements booking.IdentityProvider against a Cognito endpoint.
type Provider struct {
	config      Config
	endpoint    string
	ownersGroup string
	httpClient  *http.Client
	logger      *slog.Logger

	autoConfirm    bool
	adminAccessKey string
}

var _ booking.IdentityProvider = (*Provider)(nil)

// Option configures the Provider.
type Option func(*Provider)

// WithHTTPClient sets a custom HTTP client for identity-service requests.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) { p.httpClient = c }
}

// WithOwnersGroup sets the group whose members get the owner role.
// Default: token.DefaultOwnersGroup.
func WithOwnersGroup(group string) Option {
	return func(p *Provider) { p.ownersGroup = group }
}

// WithLogger sets a structured logger. Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(p *Provider) { p.logger = l }
}

// WithAutoConfirm makes Signup confirm the new account and add it to the
// owners group via Cognito admin calls, attributed to the given access key.
//
// This is a deployment convenience for test environments: LocalStack only
// parses the access key out of the credential header, real AWS would reject
// the unsigned admin calls. A production pool should confirm accounts
// through its own flow (e.g. a pre-signup trigger) instead.
func WithAutoConfirm(accessKey string) Option {
	return func(p *Provider) {
		p.autoConfirm = true
		p.adminAccessKey = accessKey
	}
}

// New creates a Cognito identity provider.
func New(cfg Config, opts ...Option) (*Provider, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("cognito: ClientID is required")
	}
	if cfg.Region == "" && cfg.Endpoint == "" {
		return nil, fmt.Errorf("cognito: one of Region or Endpoint is required")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://cognito-idp.%s.amazonaws.com", cfg.Region)
	}

	p := &Provider{
		config:      cfg,
		endpoint:    strings.TrimSuffix(endpoint, "/"),
		ownersGroup: token.DefaultOwnersGroup,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// authenticationResult is the token set in an InitiateAuth response.
type authenticationResult struct {
	AccessToken  string `json:"AccessToken"`
	IDToken      string `json:"IdToken"`
	RefreshToken string `json:"RefreshToken"`
	ExpiresIn    int32  `json:"ExpiresIn"`
	TokenType    string `json:"TokenType"`
}

type initiateAuthResponse struct {
	AuthenticationResult *authenticationResult `json:"AuthenticationResult"`
}

// Login performs a USER_PASSWORD_AUTH exchange and derives the user profile
// from the identity-token claims.
func (p *Provider) Login(ctx context.Context, email, password string) (*booking.AuthResult, error) {
	var out initiateAuthResponse
	err := p.call(ctx, "InitiateAuth", map[string]any{
		"AuthFlow": "USER_PASSWORD_AUTH",
		"ClientId": p.config.ClientID,
		"AuthParameters": map[string]string{
			"USERNAME": email,
			"PASSWORD": password,
		},
	}, &out)
	if err != nil {
		if isAuthRejection(err) {
			return nil, fmt.Errorf("cognito: login: %w", booking.ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("cognito: login: %w", err)
	}

	res, err := p.mapResult(out.AuthenticationResult)
	if err != nil {
		return nil, fmt.Errorf("cognito: login: %w", err)
	}
	p.logger.Debug("login succeeded", "user_id", res.User.ID, "role", res.User.Role)
	return res, nil
}

// Refresh performs a REFRESH_TOKEN_AUTH exchange. Cognito may omit a new
// refresh token when the old one is still valid; the result then carries an
// empty one and the caller retains the previous token.
func (p *Provider) Refresh(ctx context.Context, refreshToken string) (*booking.AuthResult, error) {
	var out initiateAuthResponse
	err := p.call(ctx, "InitiateAuth", map[string]any{
		"AuthFlow": "REFRESH_TOKEN_AUTH",
		"ClientId": p.config.ClientID,
		"AuthParameters": map[string]string{
			"REFRESH_TOKEN": refreshToken,
		},
	}, &out)
	if err != nil {
		if isAuthRejection(err) {
			return nil, fmt.Errorf("cognito: refresh: %w", booking.ErrRefreshRejected)
		}
		return nil, fmt.Errorf("cognito: refresh: %w", err)
	}

	res, err := p.mapResult(out.AuthenticationResult)
	if err != nil {
		return nil, fmt.Errorf("cognito: refresh: %w", err)
	}
	return res, nil
}

// Signup registers a new account. The account lands UNCONFIRMED and no
// session is established; with auto-confirm enabled the account is
// confirmed and added to the owners group as a side effect.
func (p *Provider) Signup(ctx context.Context, user booking.User, password string) (*booking.AuthResult, error) {
	var out struct {
		UserConfirmed bool   `json:"UserConfirmed"`
		UserSub       string `json:"UserSub"`
	}
	err := p.call(ctx, "SignUp", map[string]any{
		"ClientId": p.config.ClientID,
		"Username": user.Email,
		"Password": password,
		"UserAttributes": []map[string]string{
			{"Name": "email", "Value": user.Email},
		},
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("cognito: signup: %w", err)
	}

	user.ID = out.UserSub
	user.Role = booking.RoleGuest

	if p.autoConfirm {
		if err := p.confirmAndPromote(ctx, user.Email); err != nil {
			p.logger.Warn("auto-confirm failed (expected on real AWS)", "error", err)
		} else {
			user.Role = booking.RoleOwner
		}
	}

	return &booking.AuthResult{User: &user}, nil
}

// Logout is a no-op that resolves successfully: token revocation is not
// exposed by this flow, tokens simply age out.
func (p *Provider) Logout(context.Context) error { return nil }

// confirmAndPromote performs the admin-side confirmation used in test
// environments.
func (p *Provider) confirmAndPromote(ctx context.Context, email string) error {
	if p.config.UserPoolID == "" {
		return fmt.Errorf("cognito: UserPoolID is required for auto-confirm")
	}

	if err := p.adminCall(ctx, "AdminConfirmSignUp", map[string]any{
		"UserPoolId": p.config.UserPoolID,
		"Username":   email,
	}); err != nil {
		return err
	}

	return p.adminCall(ctx, "AdminAddUserToGroup", map[string]any{
		"UserPoolId": p.config.UserPoolID,
		"Username":   email,
		"GroupName":  p.ownersGroup,
	})
}

// mapResult normalizes an authentication result into the common shape.
func (p *Provider) mapResult(result *authenticationResult) (*booking.AuthResult, error) {
	if result == nil || result.IDToken == "" {
		return nil, booking.ErrNoIdentityToken
	}

	user, err := token.UserFromIDToken(result.IDToken, p.ownersGroup)
	if err != nil {
		return nil, err
	}

	return &booking.AuthResult{
		User:         user,
		AccessToken:  result.AccessToken,
		IDToken:      result.IDToken,
		RefreshToken: result.RefreshToken,
	}, nil
}

// apiError is a Cognito error response ({"__type": ..., "message": ...}).
type apiError struct {
	Status  int
	Type    string `json:"__type"`
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("cognito: %s (%d): %s", e.Type, e.Status, e.Message)
}

// isAuthRejection reports whether the error is a credential/token rejection
// rather than a transport or service failure.
func isAuthRejection(err error) bool {
	var ae *apiError
	if !errors.As(err, &ae) {
		return false
	}
	switch strings.TrimPrefix(ae.Type, "com.amazonaws.cognito.identity.idp.model#") {
	case "NotAuthorizedException", "UserNotFoundException", "UserNotConfirmedException", "PasswordResetRequiredException":
		return true
	}
	return false
}

// call issues a Cognito JSON request and decodes the response into out.
func (p *Provider) call(ctx context.Context, action string, payload, out any) error {
	return p.do(ctx, action, payload, out, "")
}

// adminCall issues an admin operation with static credentials. The dummy
// SigV4 header is accepted by LocalStack, which only parses the access key.
func (p *Provider) adminCall(ctx context.Context, action string, payload any) error {
	auth := fmt.Sprintf(
		"AWS4-HMAC-SHA256 Credential=%s/20200101/%s/cognito-idp/aws4_request, SignedHeaders=host;x-amz-target, Signature=localstack",
		p.adminAccessKey, p.config.Region,
	)
	return p.do(ctx, action, payload, nil, auth)
}

func (p *Provider) do(ctx context.Context, action string, payload, out any, authorization string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("cognito: encode %s request: %w", action, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint+"/", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("cognito: create %s request: %w", action, err)
	}
	req.Header.Set("Content-Type", "application/x-amz-json-1.1")
	req.Header.Set("X-Amz-Target", target+action)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("cognito: %s request failed: %w", action, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("cognito: read %s response: %w", action, err)
	}

	if resp.StatusCode != http.StatusOK {
		ae := &apiError{Status: resp.StatusCode}
		if err := json.Unmarshal(data, ae); err != nil || ae.Type == "" {
			ae.Type = "UnknownError"
			ae.Message = string(data)
		}
		return ae
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("cognito: decode %s response: %w", action, err)
		}
	}
	return nil
}
