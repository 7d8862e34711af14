package service

import (
	"context"

	audit "landregistry/pkg/platform/audit"
)

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Sequencer supplies a block height when the invocation context has none,
// as happens for startup bootstrap and tests.
type Sequencer interface {
	Next(ctx context.Context) (uint64, error)
}
