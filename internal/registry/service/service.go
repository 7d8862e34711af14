package service

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"landregistry/internal/registry/metrics"
	"landregistry/internal/registry/models"
)

// PropertyStore holds properties, their metadata and the registry scalars.
type PropertyStore interface {
	Insert(ctx context.Context, p *models.Property, m *models.Metadata) error
	FindByID(ctx context.Context, id models.PropertyID) (*models.Property, error)
	FindMetadata(ctx context.Context, id models.PropertyID) (*models.Metadata, error)
	Update(ctx context.Context, p *models.Property) error
	State(ctx context.Context) (models.RegistryState, error)
	SetPaused(ctx context.Context, paused bool) error
}

type AdminStore interface {
	Find(ctx context.Context, principal models.Principal) (*models.Administrator, error)
	Upsert(ctx context.Context, admin *models.Administrator) error
	List(ctx context.Context) ([]*models.Administrator, error)
}

// HistoryStore is append-only.
type HistoryStore interface {
	Append(ctx context.Context, rec *models.TransferRecord) error
	Find(ctx context.Context, id models.PropertyID, sequence uint64) (*models.TransferRecord, error)
	ListByProperty(ctx context.Context, id models.PropertyID) ([]*models.TransferRecord, error)
}

// Service is the operation coordinator. It is the only writer of registry
// state: each mutating entry point runs its checks in a fixed order inside one
// transaction and applies its whole effect or nothing.
type Service struct {
	properties PropertyStore
	admins     AdminStore
	history    HistoryStore
	tx         StoreTx
	deployer   models.Principal

	sequencer       Sequencer
	logger          *slog.Logger
	auditPublisher  AuditPublisher
	metrics         *metrics.Metrics
	tracer          trace.Tracer
	legacyAreaError bool
	recordTransfers bool
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTx replaces the default in-memory transaction boundary.
func WithTx(tx StoreTx) Option {
	return func(s *Service) {
		s.tx = tx
	}
}

func WithSequencer(seq Sequencer) Option {
	return func(s *Service) {
		s.sequencer = seq
	}
}

// WithLegacyAreaError reports a non-positive area as invalid_coordinates
// instead of invalid_area.
func WithLegacyAreaError(enabled bool) Option {
	return func(s *Service) {
		s.legacyAreaError = enabled
	}
}

// WithRecordTransfers appends a history record for every ownership transfer,
// not only for audits.
func WithRecordTransfers(enabled bool) Option {
	return func(s *Service) {
		s.recordTransfers = enabled
	}
}

// New constructs a Service. deployer is the fixed identity allowed to
// bootstrap, grant roles and pause the registry.
func New(properties PropertyStore, admins AdminStore, history HistoryStore, deployer models.Principal, opts ...Option) *Service {
	s := &Service{
		properties: properties,
		admins:     admins,
		history:    history,
		deployer:   deployer,
		tx:         NewMemoryTx(),
		tracer:     otel.Tracer("landregistry/registry"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Deployer returns the fixed deploy-time identity.
func (s *Service) Deployer() models.Principal {
	return s.deployer
}
