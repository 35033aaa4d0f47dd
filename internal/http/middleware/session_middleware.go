package middleware

import (
	"context"
	"net/http"

	"github.com/jurisconnect/console/internal/gateway"
	"github.com/jurisconnect/console/internal/http/response"
	"github.com/jurisconnect/console/internal/security"
)

type contextKey string

const sessionIDContextKey contextKey = "console_session_id"

// EnsureSession gives every browser a signed console session id cookie and
// threads the id through the request context, including the slot the API
// transport reads for bearer injection.
func EnsureSession(cookies *security.CookieManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid := ""
			if raw := security.GetCookie(r, security.SessionCookieName); raw != "" {
				if parsed, err := cookies.Parse(raw); err == nil {
					sid = parsed
				}
			}
			if sid == "" {
				sid = security.NewSessionID()
				signed, err := cookies.Issue(sid)
				if err != nil {
					response.Error(w, r, http.StatusInternalServerError, "SESSION_COOKIE", "could not establish a console session", nil)
					return
				}
				cookies.Write(w, signed)
			}

			ctx := WithSessionID(r.Context(), sid)
			ctx = gateway.WithSessionID(ctx, sid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func WithSessionID(ctx context.Context, sid string) context.Context {
	return context.WithValue(ctx, sessionIDContextKey, sid)
}

func SessionIDFromContext(ctx context.Context) string {
	sid, _ := ctx.Value(sessionIDContextKey).(string)
	return sid
}
