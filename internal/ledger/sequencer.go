// Package ledger issues the logical block heights that order registry
// invocations. Heights are strictly increasing and never reused, so they
// double as audit sequence numbers.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"

	"github.com/redis/go-redis/v9"
)

// Sequencer hands out the next block height.
type Sequencer interface {
	Next(ctx context.Context) (uint64, error)
}

// MemorySequencer is a process-local counter.
type MemorySequencer struct {
	height atomic.Uint64
}

// NewMemorySequencer starts counting after start; the first height is start+1.
func NewMemorySequencer(start uint64) *MemorySequencer {
	s := &MemorySequencer{}
	s.height.Store(start)
	return s
}

func (s *MemorySequencer) Next(context.Context) (uint64, error) {
	return s.height.Add(1), nil
}

// Current returns the last issued height.
func (s *MemorySequencer) Current() uint64 {
	return s.height.Load()
}

const DefaultRedisKey = "registry:block_height"

// RedisSequencer shares one counter across replicas via INCR.
type RedisSequencer struct {
	client redis.Cmdable
	key    string
}

func NewRedisSequencer(client redis.Cmdable, key string) *RedisSequencer {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisSequencer{client: client, key: key}
}

func (s *RedisSequencer) Next(ctx context.Context) (uint64, error) {
	h, err := s.client.Incr(ctx, s.key).Result()
	if err != nil {
		return 0, fmt.Errorf("incr block height: %w", err)
	}
	return uint64(h), nil
}

// PostgresSequencer draws heights from the block_height_seq sequence.
type PostgresSequencer struct {
	db *sql.DB
}

func NewPostgresSequencer(db *sql.DB) *PostgresSequencer {
	return &PostgresSequencer{db: db}
}

func (s *PostgresSequencer) Next(ctx context.Context) (uint64, error) {
	var h int64
	if err := s.db.QueryRowContext(ctx, `SELECT nextval('block_height_seq')`).Scan(&h); err != nil {
		return 0, fmt.Errorf("next block height: %w", err)
	}
	return uint64(h), nil
}
