package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jurisconnect/console/internal/http/handler"
	"github.com/jurisconnect/console/internal/http/middleware"
	"github.com/jurisconnect/console/internal/http/response"
	"github.com/jurisconnect/console/internal/security"
)

type Dependencies struct {
	AuthHandler    *handler.AuthHandler
	ConsoleHandler *handler.ConsoleHandler
	PageHandler    *handler.PageHandler
	CookieManager  *security.CookieManager
	Sessions       middleware.AuthChecker
	Readiness      func() error
	EnableOTelHTTP bool
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.StructuredRequestLogger)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.EnsureSession(dep.CookieManager))

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if dep.Readiness != nil {
			if err := dep.Readiness(); err != nil {
				response.Error(w, r, http.StatusServiceUnavailable, "DEPENDENCY_UNREADY", err.Error(), nil)
				return
			}
		}
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
	})

	// Entry views: authenticated visitors are bounced to the landing view.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Guard(dep.Sessions, false))
		r.Get("/login", dep.PageHandler.View("login", "Entrar"))
		r.Get("/register", dep.PageHandler.View("register", "Cadastro"))
	})

	// Protected views: anonymous visitors are sent to login with ?from=.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Guard(dep.Sessions, true))
		r.Get("/", dep.PageHandler.View("dashboard", "Dashboard"))
		r.Get("/dashboard", dep.PageHandler.View("dashboard", "Dashboard"))
		r.Get("/clients", dep.PageHandler.View("clients", "Clientes"))
		r.Get("/cases", dep.PageHandler.View("cases", "Casos"))
		r.Get("/profile", dep.PageHandler.View("profile", "Perfil"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", dep.AuthHandler.Login)
		r.Post("/register", dep.AuthHandler.Register)
		r.Post("/logout", dep.AuthHandler.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession(dep.Sessions))
			r.Get("/me", dep.AuthHandler.Me)
			r.Post("/me/refresh", dep.AuthHandler.RefreshProfile)
			r.Get("/dashboard", dep.ConsoleHandler.Dashboard)
			r.Get("/clients", dep.ConsoleHandler.Clients)
			r.Get("/cases", dep.ConsoleHandler.Cases)
			r.Get("/cep/{code}", dep.ConsoleHandler.CEPLookup)
		})
	})

	var h http.Handler = r
	if dep.EnableOTelHTTP {
		h = otelhttp.NewHandler(r, "http.server")
	}
	return h
}
