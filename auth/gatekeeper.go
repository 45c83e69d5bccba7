package auth

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Route targets used by the gatekeeper. Exactly one login path and one
// authenticated landing path exist; every redirect in the application goes
// through these constants.
const (
	// LoginPath is where unauthenticated requests for protected pages go.
	LoginPath = "/login"
	// DashboardPath is the default landing path for authenticated users.
	DashboardPath = "/dashboard"
	// ReturnToParam carries the originally requested path through the
	// login redirect.
	ReturnToParam = "from"
)

// DefaultProtectedPrefixes are the path prefixes reachable only with a valid
// session.
var DefaultProtectedPrefixes = []string{"/dashboard"}

// DefaultPublicPaths are the exact paths an authenticated user is bounced
// away from.
var DefaultPublicPaths = []string{"/", "/login", "/register"}

// Decision is the per-request outcome of the gatekeeper.
type Decision int

const (
	// Allow lets the request through unchanged.
	Allow Decision = iota
	// RedirectLogin sends the client to the login page.
	RedirectLogin
	// RedirectDashboard sends the client to the authenticated landing page.
	RedirectDashboard
)

// Gatekeeper decides allow/redirect for every inbound page request before
// any handler runs. The decision is side-effect-free and touches no storage:
// identity comes solely from cryptographic verification of the cookie token.
type Gatekeeper struct {
	tokens            *TokenManager
	protectedPrefixes []string
	publicExact       []string
}

// NewGatekeeper builds a Gatekeeper over the given path sets. The protected
// and public-only sets must be disjoint; that is checked here, once, at
// configuration time, so no request can ever match both.
func NewGatekeeper(tokens *TokenManager, protectedPrefixes, publicExact []string) (*Gatekeeper, error) {
	for _, pub := range publicExact {
		for _, prefix := range protectedPrefixes {
			if strings.HasPrefix(pub, prefix) {
				return nil, fmt.Errorf("gatekeeper: public path %q overlaps protected prefix %q", pub, prefix)
			}
		}
	}
	return &Gatekeeper{
		tokens:            tokens,
		protectedPrefixes: protectedPrefixes,
		publicExact:       publicExact,
	}, nil
}

// Decide applies the routing rules to a single request. Rule A (protected
// path without a session) wins over rule B (public-only path with one);
// anything else is allowed through.
func (g *Gatekeeper) Decide(path string, authenticated bool) Decision {
	if !authenticated {
		for _, prefix := range g.protectedPrefixes {
			if strings.HasPrefix(path, prefix) {
				return RedirectLogin
			}
		}
		return Allow
	}

	for _, pub := range g.publicExact {
		if path == pub {
			return RedirectDashboard
		}
	}
	return Allow
}

// Middleware wraps page routes with the gatekeeper. An expired or mis-signed
// token is treated exactly like no token: the request degrades to
// unauthenticated and follows the redirect rules, it never errors out.
func (g *Gatekeeper) Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, err := g.tokens.Validate(TokenFromRequest(r))
			authenticated := err == nil

			switch g.Decide(r.URL.Path, authenticated) {
			case RedirectLogin:
				target := LoginPath + "?" + ReturnToParam + "=" + url.QueryEscape(r.URL.Path)
				http.Redirect(w, r, target, http.StatusFound)
			case RedirectDashboard:
				http.Redirect(w, r, DashboardPath, http.StatusFound)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}
