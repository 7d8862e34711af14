package service

import (
	"context"
	"sync"
	"time"

	dErrors "landregistry/pkg/domain-errors"
)

// StoreTx provides the atomic boundary for one registry invocation.
// Implementations wrap a database transaction or, in memory, a registry-wide
// lock. fn receives the context stores must use.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

// ReadTx is implemented by boundaries whose reads could otherwise observe a
// half-applied invocation.
type ReadTx interface {
	RunReadOnly(ctx context.Context, fn func(txCtx context.Context) error) error
}

const defaultTxTimeout = 5 * time.Second

// MemoryTx serializes every invocation behind one mutex. The coordinator runs
// all checks before the first write, so a failed invocation leaves the
// in-memory stores untouched.
type MemoryTx struct {
	mu      sync.RWMutex
	timeout time.Duration
}

func NewMemoryTx() *MemoryTx {
	return &MemoryTx{timeout: defaultTxTimeout}
}

func (t *MemoryTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline && t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	return fn(ctx)
}

func (t *MemoryTx) RunReadOnly(ctx context.Context, fn func(txCtx context.Context) error) error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return fn(ctx)
}
