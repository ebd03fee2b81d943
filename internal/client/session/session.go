// Package session exposes the current actor's identity to the submission
// core. The identity is derived from the access token issued at login; the
// core never verifies the token (the server does), it only reads claims.
package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNotAuthenticated = errors.New("not authenticated")

// TokenSource yields the current access token; empty before login. The API
// client implements it.
type TokenSource interface {
	AccessToken() string
}

// Actor is the authenticated user as seen by the core: id for write payloads
// and self-notification suppression, display data for optimistic entities.
type Actor struct {
	ID          string
	DisplayName string
}

type actorClaims struct {
	DisplayName string `json:"displayName"`
	jwt.RegisteredClaims
}

// Session reads the current actor from a token source, caching the parsed
// claims per token value.
type Session struct {
	tokens TokenSource

	mu        sync.Mutex
	lastToken string
	actor     Actor
}

func New(tokens TokenSource) *Session {
	return &Session{tokens: tokens}
}

// CurrentActor returns the actor encoded in the current access token.
// Returns ErrNotAuthenticated before login.
func (s *Session) CurrentActor() (Actor, error) {
	token := s.tokens.AccessToken()
	if token == "" {
		return Actor{}, ErrNotAuthenticated
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if token == s.lastToken {
		return s.actor, nil
	}

	var claims actorClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return Actor{}, fmt.Errorf("parsing access token: %w", err)
	}
	if claims.Subject == "" {
		return Actor{}, fmt.Errorf("%w: token has no subject", ErrNotAuthenticated)
	}

	s.lastToken = token
	s.actor = Actor{ID: claims.Subject, DisplayName: claims.DisplayName}
	return s.actor, nil
}
