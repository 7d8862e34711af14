package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"landregistry/internal/registry/models"
	dErrors "landregistry/pkg/domain-errors"
	"landregistry/pkg/platform/httputil"
	"landregistry/pkg/platform/middleware/admin"
	"landregistry/pkg/platform/middleware/auth"
	"landregistry/pkg/requestcontext"
)

// Service is the registry coordinator as seen by the HTTP edge.
type Service interface {
	Bootstrap(ctx context.Context, caller models.Principal) error
	AddAdministrator(ctx context.Context, caller, target models.Principal, role models.Role, active bool) error
	GetAdministrator(ctx context.Context, identity models.Principal) (*models.Administrator, bool, error)
	ListAdministrators(ctx context.Context) ([]*models.Administrator, error)
	SetPaused(ctx context.Context, caller models.Principal, paused bool) error
	Stats(ctx context.Context) (models.RegistryState, error)

	Register(ctx context.Context, caller models.Principal, cmd models.RegisterCommand) (models.PropertyID, error)
	Transfer(ctx context.Context, caller models.Principal, id models.PropertyID, recipient models.Principal) error
	Audit(ctx context.Context, caller models.Principal, id models.PropertyID, price uint64, notary models.Principal) (*models.AuditSummary, error)
	UpdateStatus(ctx context.Context, caller models.Principal, id models.PropertyID, status models.Status) error

	GetPropertyInfo(ctx context.Context, id models.PropertyID) (*models.Property, bool, error)
	GetPropertyMetadata(ctx context.Context, id models.PropertyID) (*models.Metadata, bool, error)
	VerifyOwnership(ctx context.Context, id models.PropertyID, claimed models.Principal) (bool, error)
	History(ctx context.Context, id models.PropertyID) ([]*models.TransferRecord, error)
	HistoryEntry(ctx context.Context, id models.PropertyID, sequence uint64) (*models.TransferRecord, bool, error)
}

// Handler serves the registry routes.
type Handler struct {
	registry   Service
	logger     *slog.Logger
	tokens     auth.TokenValidator
	adminToken string
}

func New(registry Service, tokens auth.TokenValidator, adminToken string, logger *slog.Logger) *Handler {
	return &Handler{
		registry:   registry,
		logger:     logger,
		tokens:     tokens,
		adminToken: adminToken,
	}
}

// Register mounts the registry routes on r. Request-scoped middleware
// (request id, recovery, logging) is applied by the caller.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(auth.RequirePrincipal(h.tokens, h.logger))
		r.Post("/registry/bootstrap", h.handleBootstrap)
		r.Post("/registry/administrators", h.handleAddAdministrator)
		r.Post("/registry/pause", h.handleSetPaused)
		r.Post("/properties", h.handleRegister)
		r.Post("/properties/{id}/transfer", h.handleTransfer)
		r.Post("/properties/{id}/audit", h.handleAudit)
		r.Post("/properties/{id}/status", h.handleUpdateStatus)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.OptionalPrincipal(h.tokens))
		r.Get("/registry/administrators/{principal}", h.handleGetAdministrator)
		r.Get("/registry/stats", h.handleStats)
		r.Get("/properties/{id}", h.handleGetProperty)
		r.Get("/properties/{id}/metadata", h.handleGetMetadata)
		r.Get("/properties/{id}/ownership", h.handleVerifyOwnership)
		r.Get("/properties/{id}/history", h.handleHistory)
		r.Get("/properties/{id}/history/{sequence}", h.handleHistoryEntry)
	})

	r.With(admin.RequireAdminToken(h.adminToken, h.logger)).
		Get("/registry/administrators", h.handleListAdministrators)
}

func (h *Handler) caller(ctx context.Context) (models.Principal, error) {
	p := models.Principal(requestcontext.Principal(ctx))
	if p.IsZero() {
		h.logger.ErrorContext(ctx, "principal missing from context despite auth middleware",
			"request_id", requestcontext.RequestID(ctx),
		)
		return "", dErrors.New(dErrors.CodeUnauthenticated, "authentication required")
	}
	return p, nil
}

func propertyID(r *http.Request) (models.PropertyID, error) {
	return models.ParsePropertyID(chi.URLParam(r, "id"))
}

// fail logs at a level matching the failure and writes the error envelope.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	} else {
		h.logger.WarnContext(ctx, msg,
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	httputil.WriteError(w, err)
}
