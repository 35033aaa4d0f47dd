package handler

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/jurisconnect/console/internal/domain"
	"github.com/jurisconnect/console/internal/http/middleware"
	"github.com/jurisconnect/console/internal/session"
)

// shellTemplate is the minimal server-rendered shell; the SPA bundle takes
// over from data-view once loaded.
var shellTemplate = template.Must(template.New("shell").Parse(`<!doctype html>
<html lang="pt-BR">
<head><meta charset="utf-8"><title>{{.Title}} | JurisConnect</title></head>
<body data-view="{{.View}}"{{if .UserName}} data-user="{{.UserName}}" data-initials="{{.Initials}}" data-role="{{.RoleLabel}}"{{end}}>
<div id="root"></div>
</body>
</html>
`))

type shellData struct {
	View      string
	Title     string
	UserName  string
	Initials  string
	RoleLabel string
}

type PageHandler struct {
	sessions *session.Store
	logger   *slog.Logger
}

func NewPageHandler(sessions *session.Store, logger *slog.Logger) *PageHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PageHandler{sessions: sessions, logger: logger}
}

// View renders the console shell for a named view. Route protection is the
// guard middleware's job; by the time this runs the decision was made.
func (h *PageHandler) View(name, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := shellData{View: name, Title: title}
		sid := middleware.SessionIDFromContext(r.Context())
		if user := h.sessions.User(r.Context(), sid); user != nil {
			data.UserName = user.Name
			data.Initials = domain.Initials(user.Name)
			data.RoleLabel = user.Role.Label()
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := shellTemplate.Execute(w, data); err != nil {
			h.logger.ErrorContext(r.Context(), "render shell", "view", name, "error", err)
		}
	}
}
