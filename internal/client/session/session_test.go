package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

type staticTokens struct{ token string }

func (s *staticTokens) AccessToken() string { return s.token }

func signedToken(t *testing.T, sub, name string) string {
	t.Helper()
	claims := actorClaims{
		DisplayName: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return token
}

func TestCurrentActor_ParsesClaims(t *testing.T) {
	ts := &staticTokens{token: signedToken(t, "u-42", "Uma")}
	s := New(ts)

	actor, err := s.CurrentActor()
	require.NoError(t, err)
	require.Equal(t, "u-42", actor.ID)
	require.Equal(t, "Uma", actor.DisplayName)
}

func TestCurrentActor_NotAuthenticated(t *testing.T) {
	s := New(&staticTokens{})
	_, err := s.CurrentActor()
	require.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestCurrentActor_RejectsGarbageToken(t *testing.T) {
	s := New(&staticTokens{token: "not-a-jwt"})
	_, err := s.CurrentActor()
	require.Error(t, err)
}

func TestCurrentActor_NoSubject(t *testing.T) {
	s := New(&staticTokens{token: signedToken(t, "", "Uma")})
	_, err := s.CurrentActor()
	require.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestCurrentActor_TracksTokenChange(t *testing.T) {
	ts := &staticTokens{token: signedToken(t, "u-1", "One")}
	s := New(ts)

	actor, err := s.CurrentActor()
	require.NoError(t, err)
	require.Equal(t, "u-1", actor.ID)

	ts.token = signedToken(t, "u-2", "Two")
	actor, err = s.CurrentActor()
	require.NoError(t, err)
	require.Equal(t, "u-2", actor.ID)
	require.Equal(t, "Two", actor.DisplayName)
}
