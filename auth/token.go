package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Wirandy/ATARES/config"
)

// Validation failure modes. Callers treat every one of them uniformly as
// "not authenticated"; the distinct values exist for server-side logging.
var (
	// ErrMissingToken means no token was presented at all.
	ErrMissingToken = errors.New("missing token")
	// ErrMalformedToken means the token could not be parsed as a JWT or
	// carries no usable identity claim.
	ErrMalformedToken = errors.New("malformed token")
	// ErrBadSignature means the signature does not verify against the
	// current secret.
	ErrBadSignature = errors.New("invalid token signature")
	// ErrTokenExpired means the signature verifies but the expiry has
	// passed.
	ErrTokenExpired = errors.New("token expired")
)

// SessionClaims is the payload of a session token: the user identifier plus
// the registered iat/exp claims.
type SessionClaims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenManager issues and validates session tokens. Both operations are pure
// CPU work over a process-wide secret that is read-only after startup;
// rotating the secret invalidates every outstanding token.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager creates a TokenManager from auth configuration.
func NewTokenManager(cfg *config.AuthConfig) *TokenManager {
	return &TokenManager{
		secret: []byte(cfg.JWTSecret),
		ttl:    cfg.TokenTTL,
	}
}

// TTL returns the fixed token lifetime.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Issue creates a signed HS256 token embedding userID, issued now and
// expiring exactly one TTL later. Placing the token into a cookie is the
// caller's job.
func (m *TokenManager) Issue(userID int64) (string, error) {
	now := time.Now()
	claims := &SessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			Subject:   fmt.Sprintf("%d", userID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Validate verifies signature and expiry and returns the embedded user ID.
// It never panics; every failure is one of the sentinel errors above.
func (m *TokenManager) Validate(tokenString string) (int64, error) {
	if tokenString == "" {
		return 0, ErrMissingToken
	}

	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return 0, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return 0, ErrBadSignature
		default:
			return 0, ErrMalformedToken
		}
	}

	if !token.Valid || claims.UserID == 0 {
		return 0, ErrMalformedToken
	}

	return claims.UserID, nil
}
