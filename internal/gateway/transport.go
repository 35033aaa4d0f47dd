package gateway

import (
	"context"
	"net/http"

	"github.com/jurisconnect/console/internal/observability"
)

type contextKey string

const (
	sessionIDContextKey   contextKey = "console_session_id"
	forcedLogoutExemptKey contextKey = "forced_logout_exempt"
)

// WithSessionID tags a request context with the console session whose token
// should authorize outgoing API calls.
func WithSessionID(ctx context.Context, sid string) context.Context {
	return context.WithValue(ctx, sessionIDContextKey, sid)
}

func SessionIDFromContext(ctx context.Context) string {
	sid, _ := ctx.Value(sessionIDContextKey).(string)
	return sid
}

// exemptFromForcedLogout marks credential-exchange calls. A 401 from the
// login endpoint means bad credentials, not an expired session, and must
// not touch previously stored state.
func exemptFromForcedLogout(ctx context.Context) context.Context {
	return context.WithValue(ctx, forcedLogoutExemptKey, true)
}

func isForcedLogoutExempt(ctx context.Context) bool {
	v, _ := ctx.Value(forcedLogoutExemptKey).(bool)
	return v
}

// TokenSource yields the bearer token for a console session, empty when
// unauthenticated. *session.Store satisfies it.
type TokenSource interface {
	Token(ctx context.Context, sid string) string
}

// UnauthorizedHook is invoked on any API response with an
// authorization-failure status. Subscribed exactly once at wiring time.
type UnauthorizedHook func(ctx context.Context, sid string)

// Transport injects Authorization: Bearer <token> on outgoing API calls
// and fires the unauthorized hook on any 401, regardless of endpoint.
type Transport struct {
	Base           http.RoundTripper
	Tokens         TokenSource
	OnUnauthorized UnauthorizedHook
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	ctx := req.Context()
	sid := SessionIDFromContext(ctx)
	out := req.Clone(ctx)
	if sid != "" && t.Tokens != nil {
		if tok := t.Tokens.Token(ctx, sid); tok != "" {
			out.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := base.RoundTrip(out)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized && !isForcedLogoutExempt(ctx) && t.OnUnauthorized != nil {
		observability.RecordForcedLogout(ctx)
		t.OnUnauthorized(ctx, sid)
	}
	return resp, nil
}
