package auth

import (
	"net/http"
	"time"
)

// SessionCookieName is the name of the HTTP-only session cookie. The token
// lives exclusively in this cookie; it is never handed to client-readable
// storage.
const SessionCookieName = "token"

// CookieSettings captures the deployment-dependent parts of the session
// cookie.
type CookieSettings struct {
	// Secure marks the cookie HTTPS-only. Enabled in production.
	Secure bool
	// MaxAge is the cookie lifetime, matching the token TTL.
	MaxAge time.Duration
}

// SessionCookie builds the Set-Cookie value carrying a freshly issued token.
func (s CookieSettings) SessionCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ExpiredSessionCookie builds the Set-Cookie value that destroys the
// session: empty value, immediate expiry.
func (s CookieSettings) ExpiredSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// TokenFromRequest reads the session token from the request's cookie jar.
// A missing cookie yields an empty string; the validator maps that to
// ErrMissingToken.
func TokenFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
