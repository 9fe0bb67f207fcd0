package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPasetoService(t *testing.T, now time.Time) *PasetoService {
	t.Helper()
	s, err := NewPasetoService([]byte(strings.Repeat("k", 32)), 24*time.Hour)
	require.NoError(t, err)
	s.now = func() time.Time { return now }
	return s
}

func TestPasetoService_RoundTrip(t *testing.T) {
	t.Parallel()

	s := newTestPasetoService(t, time.Now())
	tok, err := s.CreateToken("a@x.com")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(tok, "v4.local."))

	claims, err := s.VerifyToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", claims.Subject)
}

func TestPasetoService_Expired(t *testing.T) {
	t.Parallel()

	issued := time.Now().Add(-48 * time.Hour)
	s := newTestPasetoService(t, issued)
	tok, err := s.CreateToken("a@x.com")
	require.NoError(t, err)

	s.now = time.Now
	_, err = s.VerifyToken(tok)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestPasetoService_ExpiryBoundary(t *testing.T) {
	t.Parallel()

	issued := time.Now().Add(-48 * time.Hour).Truncate(time.Second)
	s := newTestPasetoService(t, issued)
	tok, err := s.CreateToken("a@x.com")
	require.NoError(t, err)

	expiresAt := issued.Add(24 * time.Hour)

	s.now = func() time.Time { return expiresAt }
	claims, err := s.VerifyToken(tok)
	require.NoError(t, err, "a token is still valid at its expiry instant")
	assert.True(t, claims.ExpiresAt.Equal(expiresAt))

	s.now = func() time.Time { return expiresAt.Add(time.Second) }
	_, err = s.VerifyToken(tok)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestPasetoService_Tampered(t *testing.T) {
	t.Parallel()

	s := newTestPasetoService(t, time.Now())
	tok, err := s.CreateToken("a@x.com")
	require.NoError(t, err)

	// swap one payload character for another valid base64url character
	i := len(tok) - 5
	replacement := byte('A')
	if tok[i] == 'A' {
		replacement = 'B'
	}
	tampered := tok[:i] + string(replacement) + tok[i+1:]

	_, err = s.VerifyToken(tampered)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestPasetoService_Malformed(t *testing.T) {
	t.Parallel()

	s := newTestPasetoService(t, time.Now())
	for _, tok := range []string{"", "v2.local.abc", "v4.local.", "v4.local.***", "eyJ.eyJ.sig"} {
		_, err := s.VerifyToken(tok)
		assert.ErrorIs(t, err, ErrMalformedToken, "token %q", tok)
	}
}

func TestNewPasetoService_KeyLength(t *testing.T) {
	t.Parallel()

	_, err := NewPasetoService([]byte("short"), time.Hour)
	assert.Error(t, err)
}
