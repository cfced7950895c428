// Package auth talks to the identity provider: it exchanges credentials
// for a session and produces bearer ID tokens on demand.
//
// The rest of the client never reads ambient authentication state. Every
// data-access component takes a TokenSource explicitly, so tests inject a
// static token and the CLI injects a live session — same code path.
package auth

import "context"

// TokenSource produces a bearer ID token for one request. Callers ask for
// a token fresh on every call and assume nothing about caching; a Session
// caches internally and refreshes when the token is near expiry.
type TokenSource interface {
	IDToken(ctx context.Context) (string, error)
}

// TokenSourceFunc adapts a function to the TokenSource interface.
type TokenSourceFunc func(ctx context.Context) (string, error)

func (f TokenSourceFunc) IDToken(ctx context.Context) (string, error) {
	return f(ctx)
}

// StaticTokenSource returns a TokenSource that always yields the same
// token. Used by tests and one-shot tooling.
func StaticTokenSource(token string) TokenSource {
	return TokenSourceFunc(func(context.Context) (string, error) {
		return token, nil
	})
}
