package identity

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signTestToken(t *testing.T, claims sessionClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestParseSessionClaims(t *testing.T) {
	expiry := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	raw := signTestToken(t, sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(expiry),
		},
		Email:         "user@example.com",
		EmailVerified: true,
	})

	session, err := ParseSessionClaims(raw)

	require.NoError(t, err)
	assert.Equal(t, raw, session.AccessToken)
	assert.Equal(t, "user-1", session.UserID)
	assert.Equal(t, "user@example.com", session.Email)
	assert.True(t, session.Verified)
	assert.True(t, session.ExpiresAt.Equal(expiry))
}

func TestParseSessionClaims_ExpiredTokenStillDecodes(t *testing.T) {
	// Claims are for display only; expiry handling is the caller's business
	// and validation happens against the store, not here.
	raw := signTestToken(t, sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})

	session, err := ParseSessionClaims(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", session.UserID)
}

func TestParseSessionClaims_Garbage(t *testing.T) {
	for _, raw := range []string{"", "not-a-jwt", "a.b"} {
		_, err := ParseSessionClaims(raw)
		assert.Error(t, err, "token: %q", raw)
	}
}
