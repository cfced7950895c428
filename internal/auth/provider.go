package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gamewish/gamewish/internal/apperror"
)

// Provider is a REST client for the identity provider's account
// endpoints. It covers the three credential operations the app needs
// (sign-in, sign-up, password reset); token refresh lives on Session.
type Provider struct {
	config     Config
	httpClient *http.Client
}

// Config holds the identity provider endpoints and the web API key.
//
// BaseURL is the account-operations endpoint (sign-in, sign-up, profile
// update, password reset). TokenURL is the OAuth2 token endpoint used for
// refresh-token exchange. Both are overridable so tests can point at a
// local fake.
type Config struct {
	BaseURL  string
	TokenURL string
	APIKey   string
	Timeout  time.Duration
}

func NewProvider(cfg Config) (*Provider, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("auth: base URL is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("auth: API key is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Provider{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// credentialsResponse is the portion of the provider's account responses
// we care about. The provider returns a larger object; we only unmarshal
// the fields we need.
type credentialsResponse struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"` // seconds, as a decimal string
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
}

// SignIn exchanges email/password credentials for a Session.
func (p *Provider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	var res credentialsResponse
	err := p.post(ctx, "accounts:signInWithPassword", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &res)
	if err != nil {
		return nil, err
	}
	return p.newSession(res)
}

// SignUp creates an account and sets the display name on the fresh
// profile. The profile update reuses the just-issued ID token, mirroring
// the register-then-updateProfile flow of the app.
func (p *Provider) SignUp(ctx context.Context, email, password, displayName string) (*Session, error) {
	var res credentialsResponse
	err := p.post(ctx, "accounts:signUp", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &res)
	if err != nil {
		return nil, err
	}

	if displayName != "" {
		var updated credentialsResponse
		err = p.post(ctx, "accounts:update", map[string]any{
			"idToken":           res.IDToken,
			"displayName":       displayName,
			"returnSecureToken": false,
		}, &updated)
		if err != nil {
			return nil, fmt.Errorf("auth: setting display name: %w", err)
		}
		res.DisplayName = displayName
	}

	return p.newSession(res)
}

// SendPasswordReset asks the provider to email a password-reset link.
func (p *Provider) SendPasswordReset(ctx context.Context, email string) error {
	return p.post(ctx, "accounts:sendOobCode", map[string]any{
		"requestType": "PASSWORD_RESET",
		"email":       email,
	}, &struct{}{})
}

func (p *Provider) newSession(res credentialsResponse) (*Session, error) {
	s, err := newSession(p, res)
	if err != nil {
		return nil, fmt.Errorf("auth: building session: %w", err)
	}
	return s, nil
}

// providerError is the identity provider's error envelope:
// {"error":{"message":"EMAIL_NOT_FOUND",...}}
type providerError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (p *Provider) post(ctx context.Context, op string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("auth: encoding %s request: %w", op, err)
	}

	url := fmt.Sprintf("%s/v1/%s?key=%s", p.config.BaseURL, op, p.config.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("auth: building %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return apperror.Unreachable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var pe providerError
		_ = json.NewDecoder(resp.Body).Decode(&pe)
		return credentialError(pe.Error.Message)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("auth: decoding %s response: %w", op, err)
	}
	return nil
}

// credentialError maps the provider's error codes to messages fit for
// direct display. Unrecognized codes fall through to a generic message
// rather than leaking the raw code.
func credentialError(code string) *apperror.AppError {
	switch code {
	case "EMAIL_EXISTS":
		return apperror.ValidationFailed("email", "this email is already registered")
	case "INVALID_EMAIL":
		return apperror.ValidationFailed("email", "invalid email address")
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS":
		return apperror.Unauthorized("invalid email or password")
	case "WEAK_PASSWORD", "WEAK_PASSWORD : Password should be at least 6 characters":
		return apperror.ValidationFailed("password", "password must be at least 6 characters")
	case "TOO_MANY_ATTEMPTS_TRY_LATER":
		return apperror.Unauthorized("too many attempts, try again later")
	case "USER_DISABLED":
		return apperror.Unauthorized("this account has been disabled")
	case "TOKEN_EXPIRED", "INVALID_REFRESH_TOKEN":
		return apperror.Unauthorized("session expired, sign in again")
	default:
		return apperror.Unauthorized("authentication failed, try again")
	}
}
