package auth

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// refreshSkew is how long before expiry a cached token stops being
// served. One minute absorbs clock drift between us and the backend
// verifying the token.
const refreshSkew = time.Minute

// Session is a signed-in user: it caches the current ID token and
// refreshes it through the provider's OAuth2 token endpoint when it is
// about to expire. Session implements TokenSource and is safe for
// concurrent use — every API call asks it for a token.
type Session struct {
	uid         string
	email       string
	displayName string

	mu           sync.Mutex
	idToken      string
	refreshToken string
	expiry       time.Time

	oauth *oauth2.Config
}

func newSession(p *Provider, res credentialsResponse) (*Session, error) {
	if res.IDToken == "" {
		return nil, fmt.Errorf("provider returned no ID token")
	}

	s := &Session{
		uid:          res.LocalID,
		email:        res.Email,
		displayName:  res.DisplayName,
		idToken:      res.IDToken,
		refreshToken: res.RefreshToken,
		oauth: &oauth2.Config{
			Endpoint: oauth2.Endpoint{
				TokenURL:  fmt.Sprintf("%s?key=%s", p.config.TokenURL, p.config.APIKey),
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
	}

	if secs, err := strconv.Atoi(res.ExpiresIn); err == nil && secs > 0 {
		s.expiry = time.Now().Add(time.Duration(secs) * time.Second)
	} else if exp, ok := tokenExpiry(res.IDToken); ok {
		s.expiry = exp
	}

	if s.uid == "" {
		s.uid = tokenSubject(res.IDToken)
	}

	return s, nil
}

// UID is the identity provider's stable user id, used as the userId in
// favorite and wishlist mutations.
func (s *Session) UID() string { return s.uid }

func (s *Session) Email() string { return s.email }

func (s *Session) DisplayName() string { return s.displayName }

// IDToken returns the cached token while it is fresh, otherwise refreshes
// first. A refresh failure propagates as Unauthorized through the
// provider's error mapping, signalling the caller to sign in again.
func (s *Session) IDToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.idToken != "" && (s.expiry.IsZero() || time.Until(s.expiry) > refreshSkew) {
		return s.idToken, nil
	}
	if s.refreshToken == "" {
		return "", fmt.Errorf("auth: session expired and no refresh token available")
	}

	tok, err := s.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: s.refreshToken}).Token()
	if err != nil {
		return "", fmt.Errorf("auth: refreshing session: %w", err)
	}

	s.idToken = tok.AccessToken
	s.expiry = tok.Expiry
	if tok.RefreshToken != "" {
		s.refreshToken = tok.RefreshToken
	}
	return s.idToken, nil
}

// tokenExpiry reads the exp claim from an ID token without verifying the
// signature. The token is verified by the backend on every request; here
// it only schedules the refresh.
func tokenExpiry(idToken string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func tokenSubject(idToken string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		return ""
	}
	sub, _ := claims.GetSubject()
	return sub
}
