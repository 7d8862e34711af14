//go:build integration

package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landregistry/pkg/testutil/containers"
)

func TestRedisSequencer(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()
	seq := NewRedisSequencer(rc.Client, "")

	first, err := seq.Next(ctx)
	require.NoError(t, err)
	second, err := seq.Next(ctx)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), first)
	assert.Equal(t, uint64(2), second)

	replica := NewRedisSequencer(rc.Client, DefaultRedisKey)
	third, err := replica.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), third)
}

func TestPostgresSequencer(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	ctx := context.Background()
	seq := NewPostgresSequencer(pg.DB)

	first, err := seq.Next(ctx)
	require.NoError(t, err)
	second, err := seq.Next(ctx)
	require.NoError(t, err)
	assert.Greater(t, second, first)
}
