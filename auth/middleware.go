package auth

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/Wirandy/ATARES/apperror"
)

// RequireSession protects API routes. It validates the session cookie and
// injects the caller's user ID into the request context; any validation
// failure, whatever its internal reason, produces the same 401 body.
//
// The internal reason (missing, malformed, bad signature, expired) is logged
// at debug level only; none of it reaches the client.
func RequireSession(tokens *TokenManager, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := tokens.Validate(TokenFromRequest(r))
			if err != nil {
				logger.Debug("session validation failed",
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)
				WriteError(w, r, apperror.NewAuthError("Unauthorized", err))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}
