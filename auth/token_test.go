package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wirandy/ATARES/config"
)

func newTestTokenManager(secret string, ttl time.Duration) *TokenManager {
	return NewTokenManager(&config.AuthConfig{
		JWTSecret: secret,
		TokenTTL:  ttl,
	})
}

func TestTokenManager_RoundTrip(t *testing.T) {
	t.Parallel()

	tm := newTestTokenManager("test-secret", 7*24*time.Hour)

	token, err := tm.Issue(42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := tm.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestTokenManager_Expired(t *testing.T) {
	t.Parallel()

	// Same secret, expiry already in the past: signature is intact but the
	// token must still be rejected.
	tm := newTestTokenManager("test-secret", -time.Minute)

	token, err := tm.Issue(42)
	require.NoError(t, err)

	_, err = tm.Validate(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	t.Parallel()

	issuer := newTestTokenManager("right-secret", time.Hour)
	verifier := newTestTokenManager("wrong-secret", time.Hour)

	token, err := issuer.Issue(7)
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestTokenManager_Malformed(t *testing.T) {
	t.Parallel()

	tm := newTestTokenManager("test-secret", time.Hour)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{name: "empty token", token: "", want: ErrMissingToken},
		{name: "not a jwt", token: "not.a.jwt", want: ErrMalformedToken},
		{name: "garbage", token: "garbage", want: ErrMalformedToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tm.Validate(tt.token)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestTokenManager_ValidBeforeExpiry(t *testing.T) {
	t.Parallel()

	tm := newTestTokenManager("test-secret", time.Second)

	token, err := tm.Issue(9)
	require.NoError(t, err)

	// Immediately after issuance the token is valid.
	userID, err := tm.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, int64(9), userID)
}
