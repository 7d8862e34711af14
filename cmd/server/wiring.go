package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"landregistry/internal/ledger"
	"landregistry/internal/platform/config"
	"landregistry/internal/platform/metrics"
	"landregistry/internal/platform/postgres"
	redisclient "landregistry/internal/platform/redis"
	registrymetrics "landregistry/internal/registry/metrics"
	"landregistry/internal/registry/models"
	"landregistry/internal/registry/service"
	adminstore "landregistry/internal/registry/store/admin"
	historystore "landregistry/internal/registry/store/history"
	propertystore "landregistry/internal/registry/store/property"
	audit "landregistry/pkg/platform/audit"
	auditpublisher "landregistry/pkg/platform/audit/publisher"
	"landregistry/pkg/platform/audit/store/fallback"
	kafkastore "landregistry/pkg/platform/audit/store/kafka"
	auditmemory "landregistry/pkg/platform/audit/store/memory"
)

// infra holds the process-wide backing services. Optional ones stay nil.
type infra struct {
	db        *sql.DB
	redis     *redisclient.Client
	kafka     *kafkastore.Store
	publisher *auditpublisher.Publisher
	sequencer ledger.Sequencer
	metrics   *metrics.Registry
}

func buildInfra(ctx context.Context, cfg config.Server, log *slog.Logger) (_ *infra, err error) {
	deps := &infra{metrics: metrics.New()}
	defer func() {
		if err != nil {
			deps.Close()
		}
	}()

	if cfg.Postgres.URL != "" {
		if deps.db, err = postgres.Open(ctx, cfg.Postgres.URL); err != nil {
			return nil, err
		}
		if err = postgres.ApplySchema(ctx, deps.db); err != nil {
			return nil, err
		}
	}

	if deps.redis, err = redisclient.New(ctx, cfg.Redis); err != nil {
		return nil, err
	}

	switch {
	case deps.redis != nil:
		deps.sequencer = ledger.NewRedisSequencer(deps.redis, cfg.Redis.Key)
	case deps.db != nil:
		deps.sequencer = ledger.NewPostgresSequencer(deps.db)
	default:
		deps.sequencer = ledger.NewMemorySequencer(0)
	}

	var sink audit.Store
	if len(cfg.Kafka.Brokers) > 0 {
		if deps.kafka, err = kafkastore.New(cfg.Kafka.Brokers, cfg.Kafka.Topic); err != nil {
			return nil, err
		}
		if err = deps.kafka.EnsureTopic(ctx, cfg.Kafka.Partitions, cfg.Kafka.Replication); err != nil {
			return nil, fmt.Errorf("ensure audit topic: %w", err)
		}
		sink = fallback.New(deps.kafka, auditmemory.NewInMemoryStore(), fallback.WithLogger(log))
	} else {
		sink = auditmemory.NewInMemoryStore()
	}

	opts := []auditpublisher.Option{auditpublisher.WithLogger(log)}
	if cfg.Audit.Buffer > 0 {
		opts = append(opts, auditpublisher.WithAsyncBuffer(cfg.Audit.Buffer))
	}
	deps.publisher = auditpublisher.NewPublisher(sink, opts...)

	return deps, nil
}

func (d *infra) storageName() string {
	if d.db != nil {
		return "postgres"
	}
	return "memory"
}

// Close releases resources in reverse dependency order. The publisher drains
// before the Kafka client goes away.
func (d *infra) Close() {
	if d.publisher != nil {
		d.publisher.Close()
	}
	if d.kafka != nil {
		d.kafka.Close()
	}
	if d.redis != nil {
		_ = d.redis.Close()
	}
	if d.db != nil {
		_ = d.db.Close()
	}
}

func buildService(cfg config.Server, deps *infra, log *slog.Logger) *service.Service {
	opts := []service.Option{
		service.WithLogger(log),
		service.WithAuditPublisher(deps.publisher),
		service.WithMetrics(registrymetrics.New(deps.metrics)),
		service.WithSequencer(deps.sequencer),
		service.WithLegacyAreaError(cfg.LegacyAreaError),
		service.WithRecordTransfers(cfg.RecordTransfers),
	}
	deployer := models.Principal(cfg.Deployer)

	if deps.db != nil {
		opts = append(opts, service.WithTx(service.NewPostgresTx(deps.db, cfg.TxTimeout)))
		return service.New(
			propertystore.NewPostgres(deps.db),
			adminstore.NewPostgres(deps.db),
			historystore.NewPostgres(deps.db),
			deployer, opts...,
		)
	}
	return service.New(
		propertystore.NewInMemory(),
		adminstore.NewInMemory(),
		historystore.NewInMemory(),
		deployer, opts...,
	)
}

type genesisApplier interface {
	Deployer() models.Principal
	Bootstrap(ctx context.Context, caller models.Principal) error
	AddAdministrator(ctx context.Context, caller, target models.Principal, role models.Role, active bool) error
}

// applyGenesis replays the configured grants as the deployer. Re-running it
// against a persistent store re-grants the same roles.
func applyGenesis(ctx context.Context, registry genesisApplier, genesis *config.Genesis) error {
	deployer := registry.Deployer()
	if genesis.Bootstrap {
		if err := registry.Bootstrap(ctx, deployer); err != nil {
			return fmt.Errorf("genesis bootstrap: %w", err)
		}
	}
	for _, grant := range genesis.Administrators {
		principal, err := models.ParsePrincipal(grant.Principal)
		if err != nil {
			return fmt.Errorf("genesis administrator %q: %w", grant.Principal, err)
		}
		role, err := models.ParseRole(grant.Role)
		if err != nil {
			return fmt.Errorf("genesis administrator %q: %w", grant.Principal, err)
		}
		if err := registry.AddAdministrator(ctx, deployer, principal, role, grant.IsActive()); err != nil {
			return fmt.Errorf("genesis administrator %q: %w", grant.Principal, err)
		}
	}
	return nil
}
