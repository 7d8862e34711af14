package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"landregistry/internal/registry/models"
	"landregistry/pkg/platform/httputil"
)

func (h *Handler) handleBootstrap(w http.ResponseWriter, r *http.Request) {
	caller, err := h.caller(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.registry.Bootstrap(r.Context(), caller); err != nil {
		h.fail(w, r, "bootstrap failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAddAdministrator(w http.ResponseWriter, r *http.Request) {
	caller, err := h.caller(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := httputil.DecodeAndPrepare[AddAdministratorRequest](r)
	if err != nil {
		h.fail(w, r, "invalid add administrator request", err)
		return
	}
	if err := h.registry.AddAdministrator(r.Context(), caller, req.principal, req.role, *req.Active); err != nil {
		h.fail(w, r, "add administrator failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetAdministrator(w http.ResponseWriter, r *http.Request) {
	identity, err := models.ParsePrincipal(chi.URLParam(r, "principal"))
	if err != nil {
		h.fail(w, r, "invalid principal", err)
		return
	}
	a, found, err := h.registry.GetAdministrator(r.Context(), identity)
	if err != nil {
		h.fail(w, r, "get administrator failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, AdministratorResponse{Found: found, Administrator: a})
}

func (h *Handler) handleListAdministrators(w http.ResponseWriter, r *http.Request) {
	admins, err := h.registry.ListAdministrators(r.Context())
	if err != nil {
		h.fail(w, r, "list administrators failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, AdministratorsResponse{Administrators: admins})
}

func (h *Handler) handleSetPaused(w http.ResponseWriter, r *http.Request) {
	caller, err := h.caller(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := httputil.DecodeAndPrepare[PauseRequest](r)
	if err != nil {
		h.fail(w, r, "invalid pause request", err)
		return
	}
	if err := h.registry.SetPaused(r.Context(), caller, req.Paused); err != nil {
		h.fail(w, r, "set paused failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	state, err := h.registry.Stats(r.Context())
	if err != nil {
		h.fail(w, r, "stats failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, StatsResponse{RegistryState: state})
}
