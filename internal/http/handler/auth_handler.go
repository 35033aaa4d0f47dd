package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jurisconnect/console/internal/domain"
	"github.com/jurisconnect/console/internal/gateway"
	"github.com/jurisconnect/console/internal/http/middleware"
	"github.com/jurisconnect/console/internal/http/response"
	"github.com/jurisconnect/console/internal/observability"
	"github.com/jurisconnect/console/internal/session"
	"github.com/jurisconnect/console/internal/validation"
)

type AuthHandler struct {
	gateway  *gateway.Gateway
	sessions *session.Store
	logger   *slog.Logger
}

func NewAuthHandler(gw *gateway.Gateway, sessions *session.Store, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{gateway: gw, sessions: sessions, logger: logger}
}

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

type loginResult struct {
	User       *domain.User `json:"user"`
	RedirectTo string       `json:"redirect_to"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload loginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid login payload", nil)
		return
	}
	if !validation.Email(payload.Email) {
		response.Error(w, r, http.StatusBadRequest, "VALIDATION_FAILED", validation.MsgEmail, nil)
		return
	}
	if payload.Password == "" {
		response.Error(w, r, http.StatusBadRequest, "VALIDATION_FAILED", validation.MsgRequired, nil)
		return
	}

	sid := middleware.SessionIDFromContext(r.Context())
	user, err := h.gateway.Login(r.Context(), sid, payload.Email, payload.Password, payload.Remember)
	if err != nil {
		h.writeAuthError(w, r, err)
		return
	}

	observability.Audit(r, "console.login", "user_id", user.ID)
	response.JSON(w, r, http.StatusOK, loginResult{
		User:       user,
		RedirectTo: sanitizeReturnPath(r.URL.Query().Get("from")),
	})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var profile domain.RegisterProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid registration payload", nil)
		return
	}

	fieldErrs := validation.CheckRegistration(
		profile.PersonalInfo.Name,
		profile.PersonalInfo.Email,
		profile.PersonalInfo.Phone,
		profile.PersonalInfo.CPF,
		profile.PersonalInfo.RG,
		profile.PersonalInfo.Address.ZipCode,
		profile.PersonalInfo.Address.State,
		profile.ProfessionalInfo.OABNumber,
		profile.ProfessionalInfo.OABState,
		profile.Password,
		profile.ProfessionalInfo.Specialties,
	)
	if len(fieldErrs) > 0 {
		response.Error(w, r, http.StatusBadRequest, "VALIDATION_FAILED", "corrija os campos destacados", fieldErrs)
		return
	}

	sid := middleware.SessionIDFromContext(r.Context())
	user, err := h.gateway.Register(r.Context(), sid, profile)
	if err != nil {
		h.writeAuthError(w, r, err)
		return
	}

	observability.Audit(r, "console.register", "user_id", user.ID)
	response.JSON(w, r, http.StatusCreated, loginResult{User: user, RedirectTo: middleware.DefaultLandingPath})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sid := middleware.SessionIDFromContext(r.Context())
	if err := h.gateway.Logout(r.Context(), sid); err != nil {
		h.logger.ErrorContext(r.Context(), "logout failed to clear session", "error", err)
		response.Error(w, r, http.StatusInternalServerError, "LOGOUT_FAILED", "could not clear the session", nil)
		return
	}
	observability.Audit(r, "console.logout")
	response.JSON(w, r, http.StatusOK, map[string]string{"redirect_to": middleware.LoginPath})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	sid := middleware.SessionIDFromContext(r.Context())
	user := h.sessions.User(r.Context(), sid)
	if user == nil {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing or expired session", nil)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{
		"user":       user,
		"initials":   domain.Initials(user.Name),
		"role_label": user.Role.Label(),
		"remember":   h.sessions.Remember(r.Context(), sid),
	})
}

func (h *AuthHandler) RefreshProfile(w http.ResponseWriter, r *http.Request) {
	sid := middleware.SessionIDFromContext(r.Context())
	user, err := h.gateway.Refresh(r.Context(), sid)
	if err != nil {
		h.writeAuthError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"user": user})
}

func (h *AuthHandler) writeAuthError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, gateway.ErrInvalidCredentials):
		response.Error(w, r, http.StatusUnauthorized, "INVALID_CREDENTIALS", err.Error(), nil)
	case errors.Is(err, gateway.ErrValidationFailed):
		response.Error(w, r, http.StatusBadRequest, "VALIDATION_FAILED", err.Error(), nil)
	case errors.Is(err, gateway.ErrSessionExpired):
		response.Error(w, r, http.StatusUnauthorized, "SESSION_EXPIRED", err.Error(), map[string]string{"redirect_to": middleware.LoginPath})
	case errors.Is(err, gateway.ErrAuthUnavailable):
		response.Error(w, r, http.StatusBadGateway, "AUTH_UNAVAILABLE", err.Error(), nil)
	default:
		h.logger.ErrorContext(r.Context(), "auth operation failed", "error", err)
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "unexpected error", nil)
	}
}

// sanitizeReturnPath keeps post-login redirects inside the console.
func sanitizeReturnPath(from string) string {
	if from == "" || !strings.HasPrefix(from, "/") || strings.HasPrefix(from, "//") {
		return middleware.DefaultLandingPath
	}
	return from
}
