package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/jurisconnect/console/internal/domain"
	"github.com/jurisconnect/console/internal/observability"
	"github.com/jurisconnect/console/internal/session"
)

const (
	loginFallbackMessage    = "Erro ao fazer login"
	registerFallbackMessage = "Erro ao realizar cadastro"
	sessionExpiredMessage   = "Sessão expirada"
)

// Gateway mediates credential exchange with the remote JurisConnect API
// and keeps the Session Store consistent with server-confirmed identity.
// In-flight calls are not serialized: when a form double-submits, the last
// response to arrive wins.
type Gateway struct {
	baseURL string
	client  *http.Client
	store   *session.Store
	logger  *slog.Logger
}

func New(baseURL string, client *http.Client, store *session.Store, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{baseURL: baseURL, client: client, store: store, logger: logger}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

type authResponse struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

type apiErrorBody struct {
	Error string `json:"error"`
}

// Login exchanges credentials with the remote API and, on success, saves
// the confirmed identity and bearer token to the Session Store.
func (g *Gateway) Login(ctx context.Context, sid, email, password string, remember bool) (*domain.User, error) {
	ctx = exemptFromForcedLogout(ctx)
	resp, err := g.postJSON(ctx, "/api/login", loginRequest{Email: email, Password: password, Remember: remember})
	if err != nil {
		g.logger.WarnContext(ctx, "login request failed", "error", err)
		observability.RecordAuthLogin("unavailable")
		return nil, newError(ErrAuthUnavailable, loginFallbackMessage)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		observability.RecordAuthLogin("rejected")
		return nil, newError(ErrInvalidCredentials, decodeAPIError(resp.Body, loginFallbackMessage))
	}
	user, token, err := decodeAuthResponse(resp)
	if err != nil {
		g.logger.WarnContext(ctx, "malformed login response", "error", err)
		observability.RecordAuthLogin("malformed")
		return nil, newError(ErrAuthUnavailable, loginFallbackMessage)
	}

	if err := g.store.Save(ctx, sid, user, token, remember); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	observability.RecordAuthLogin("success")
	return user, nil
}

// Register submits the structured profile and auto-authenticates the new
// account. Remember defaults to true after registration.
func (g *Gateway) Register(ctx context.Context, sid string, profile domain.RegisterProfile) (*domain.User, error) {
	ctx = exemptFromForcedLogout(ctx)
	resp, err := g.postJSON(ctx, "/api/users", profile)
	if err != nil {
		g.logger.WarnContext(ctx, "register request failed", "error", err)
		observability.RecordAuthRegister("unavailable")
		return nil, newError(ErrAuthUnavailable, registerFallbackMessage)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		observability.RecordAuthRegister("rejected")
		return nil, newError(ErrValidationFailed, decodeAPIError(resp.Body, registerFallbackMessage))
	}
	user, token, err := decodeAuthResponse(resp)
	if err != nil {
		g.logger.WarnContext(ctx, "malformed register response", "error", err)
		observability.RecordAuthRegister("malformed")
		return nil, newError(ErrAuthUnavailable, registerFallbackMessage)
	}

	if err := g.store.Save(ctx, sid, user, token, true); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	observability.RecordAuthRegister("success")
	return user, nil
}

// Logout notifies the remote API best-effort, then unconditionally clears
// local state. The ordering guarantees the console never keeps believing
// it is authenticated after a failed network call.
func (g *Gateway) Logout(ctx context.Context, sid string) error {
	resp, err := g.postJSON(exemptFromForcedLogout(ctx), "/api/logout", struct{}{})
	if err != nil {
		g.logger.WarnContext(ctx, "logout notification failed", "error", err)
		observability.RecordAuthLogout("unreachable")
	} else {
		resp.Body.Close()
		observability.RecordAuthLogout("success")
	}

	if err := g.store.Clear(ctx, sid); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Refresh re-fetches the identity behind the stored token and rewrites the
// cached user blob. A 401 here flows through the global interceptor, which
// clears the session before this returns.
func (g *Gateway) Refresh(ctx context.Context, sid string) (*domain.User, error) {
	remember := g.store.Remember(ctx, sid)
	token := g.store.Token(ctx, sid)

	req, err := http.NewRequestWithContext(WithSessionID(ctx, sid), http.MethodGet, g.baseURL+"/api/users/me", nil)
	if err != nil {
		return nil, fmt.Errorf("build refresh request: %w", err)
	}
	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.WarnContext(ctx, "refresh request failed", "error", err)
		return nil, newError(ErrAuthUnavailable, loginFallbackMessage)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, newError(ErrSessionExpired, sessionExpiredMessage)
	}
	user, _, err := decodeAuthResponse(resp)
	if err != nil {
		g.logger.WarnContext(ctx, "malformed refresh response", "error", err)
		return nil, newError(ErrAuthUnavailable, loginFallbackMessage)
	}

	if err := g.store.Save(ctx, sid, user, token, remember); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	return user, nil
}

func (g *Gateway) postJSON(ctx context.Context, path string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return g.client.Do(req)
}

func decodeAuthResponse(resp *http.Response) (*domain.User, string, error) {
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	var ar authResponse
	dec := json.NewDecoder(resp.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&ar); err != nil {
		return nil, "", fmt.Errorf("decode auth response: %w", err)
	}
	if ar.User == nil || ar.User.ID == "" {
		return nil, "", fmt.Errorf("auth response missing user")
	}
	if ar.User.Role != "" && !ar.User.Role.Valid() {
		return nil, "", fmt.Errorf("auth response carries unknown role %q", ar.User.Role)
	}
	return ar.User, ar.Token, nil
}

func decodeAPIError(body io.Reader, fallback string) string {
	var payload apiErrorBody
	if err := json.NewDecoder(body).Decode(&payload); err != nil || payload.Error == "" {
		return fallback
	}
	return payload.Error
}
