package middleware

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jurisconnect/console/internal/http/response"
	"github.com/jurisconnect/console/internal/observability"
)

const (
	LoginPath          = "/login"
	DefaultLandingPath = "/dashboard"
)

// AuthChecker reports whether a console session currently holds a token.
// *session.Store satisfies it.
type AuthChecker interface {
	IsAuthenticated(ctx context.Context, sid string) bool
}

// Guard gates view routes. It re-reads the session store on every request;
// the answer is never cached because the store can change underneath a tab
// (another tab logging out, a background 401).
//
// requireAuth=true sends anonymous visitors to the login view, carrying the
// requested location in ?from= so they can be returned after signing in.
// requireAuth=false bounces already-authenticated visitors to the landing
// view instead of re-rendering login or registration.
func Guard(sessions AuthChecker, requireAuth bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid := SessionIDFromContext(r.Context())
			authenticated := sessions.IsAuthenticated(r.Context(), sid)

			switch {
			case requireAuth && !authenticated:
				observability.RecordGuardDecision(r.Context(), "redirect_login")
				http.Redirect(w, r, LoginPath+"?from="+url.QueryEscape(r.URL.RequestURI()), http.StatusFound)
			case !requireAuth && authenticated:
				observability.RecordGuardDecision(r.Context(), "redirect_landing")
				http.Redirect(w, r, DefaultLandingPath, http.StatusFound)
			default:
				observability.RecordGuardDecision(r.Context(), "render")
				next.ServeHTTP(w, r)
			}
		})
	}
}

// RequireSession is the API-route variant: JSON 401 instead of a redirect.
func RequireSession(sessions AuthChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid := SessionIDFromContext(r.Context())
			if !sessions.IsAuthenticated(r.Context(), sid) {
				observability.RecordGuardDecision(r.Context(), "reject_api")
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing or expired session", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
