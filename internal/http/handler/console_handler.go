package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jurisconnect/console/internal/cep"
	"github.com/jurisconnect/console/internal/directory"
	"github.com/jurisconnect/console/internal/http/response"
)

type ConsoleHandler struct {
	directory *directory.Service
	cep       *cep.Client
	logger    *slog.Logger
}

func NewConsoleHandler(dir *directory.Service, cepClient *cep.Client, logger *slog.Logger) *ConsoleHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConsoleHandler{directory: dir, cep: cepClient, logger: logger}
}

func (h *ConsoleHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, h.directory.Dashboard())
}

func (h *ConsoleHandler) Clients(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, map[string]any{"clients": h.directory.Clients()})
}

func (h *ConsoleHandler) Cases(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, map[string]any{"cases": h.directory.Cases()})
}

func (h *ConsoleHandler) CEPLookup(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	addr, err := h.cep.Lookup(r.Context(), code)
	if err != nil {
		if errors.Is(err, cep.ErrNotFound) {
			response.Error(w, r, http.StatusNotFound, "CEP_NOT_FOUND", "CEP inválido", nil)
			return
		}
		h.logger.WarnContext(r.Context(), "cep lookup failed", "code", code, "error", err)
		response.Error(w, r, http.StatusBadGateway, "CEP_UNAVAILABLE", "consulta de CEP indisponível", nil)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"address": addr})
}
