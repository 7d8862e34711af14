package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"landregistry/internal/registry/models"
	dErrors "landregistry/pkg/domain-errors"
	"landregistry/pkg/platform/httputil"
	"landregistry/pkg/requestcontext"
)

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	caller, err := h.caller(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := httputil.DecodeAndPrepare[RegisterPropertyRequest](r)
	if err != nil {
		h.fail(w, r, "invalid register request", err)
		return
	}
	id, err := h.registry.Register(r.Context(), caller, req.command())
	if err != nil {
		h.fail(w, r, "register failed", err)
		return
	}
	w.Header().Set("Location", "/properties/"+id.String())
	httputil.WriteJSON(w, http.StatusCreated, RegisterPropertyResponse{ID: id})
}

func (h *Handler) handleTransfer(w http.ResponseWriter, r *http.Request) {
	caller, err := h.caller(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	id, err := propertyID(r)
	if err != nil {
		h.fail(w, r, "invalid property id", err)
		return
	}
	req, err := httputil.DecodeAndPrepare[TransferRequest](r)
	if err != nil {
		h.fail(w, r, "invalid transfer request", err)
		return
	}
	if err := h.registry.Transfer(r.Context(), caller, id, models.Principal(req.Recipient)); err != nil {
		h.fail(w, r, "transfer failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAudit(w http.ResponseWriter, r *http.Request) {
	caller, err := h.caller(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	id, err := propertyID(r)
	if err != nil {
		h.fail(w, r, "invalid property id", err)
		return
	}
	req, err := httputil.DecodeAndPrepare[AuditRequest](r)
	if err != nil {
		h.fail(w, r, "invalid audit request", err)
		return
	}
	summary, err := h.registry.Audit(r.Context(), caller, id, req.Price, models.Principal(req.Notary))
	if err != nil {
		h.fail(w, r, "audit failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	caller, err := h.caller(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	id, err := propertyID(r)
	if err != nil {
		h.fail(w, r, "invalid property id", err)
		return
	}
	req, err := httputil.DecodeAndPrepare[StatusRequest](r)
	if err != nil {
		h.fail(w, r, "invalid status request", err)
		return
	}
	if err := h.registry.UpdateStatus(r.Context(), caller, id, req.status); err != nil {
		h.fail(w, r, "update status failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetProperty(w http.ResponseWriter, r *http.Request) {
	id, err := propertyID(r)
	if err != nil {
		h.fail(w, r, "invalid property id", err)
		return
	}
	p, found, err := h.registry.GetPropertyInfo(r.Context(), id)
	if err != nil {
		h.fail(w, r, "get property failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, PropertyResponse{Found: found, Property: p})
}

func (h *Handler) handleGetMetadata(w http.ResponseWriter, r *http.Request) {
	id, err := propertyID(r)
	if err != nil {
		h.fail(w, r, "invalid property id", err)
		return
	}
	m, found, err := h.registry.GetPropertyMetadata(r.Context(), id)
	if err != nil {
		h.fail(w, r, "get metadata failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, MetadataResponse{Found: found, Metadata: m})
}

// handleVerifyOwnership checks ?owner=, defaulting to the bearer's principal.
func (h *Handler) handleVerifyOwnership(w http.ResponseWriter, r *http.Request) {
	id, err := propertyID(r)
	if err != nil {
		h.fail(w, r, "invalid property id", err)
		return
	}
	claimed := r.URL.Query().Get("owner")
	if claimed == "" {
		claimed = requestcontext.Principal(r.Context())
	}
	owner, err := models.ParsePrincipal(claimed)
	if err != nil {
		h.fail(w, r, "invalid owner", err)
		return
	}
	verified, err := h.registry.VerifyOwnership(r.Context(), id, owner)
	if err != nil {
		h.fail(w, r, "verify ownership failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, OwnershipResponse{PropertyID: id, Owner: owner, Verified: verified})
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	id, err := propertyID(r)
	if err != nil {
		h.fail(w, r, "invalid property id", err)
		return
	}
	records, err := h.registry.History(r.Context(), id)
	if err != nil {
		h.fail(w, r, "history failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, HistoryResponse{PropertyID: id, Records: records})
}

func (h *Handler) handleHistoryEntry(w http.ResponseWriter, r *http.Request) {
	id, err := propertyID(r)
	if err != nil {
		h.fail(w, r, "invalid property id", err)
		return
	}
	seq, err := strconv.ParseUint(chi.URLParam(r, "sequence"), 10, 64)
	if err != nil {
		h.fail(w, r, "invalid sequence", dErrors.Wrap(err, dErrors.CodeBadRequest, "sequence must be a positive integer"))
		return
	}
	rec, found, err := h.registry.HistoryEntry(r.Context(), id, seq)
	if err != nil {
		h.fail(w, r, "history entry failed", err)
		return
	}
	if !found {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "no history entry at that sequence"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}
