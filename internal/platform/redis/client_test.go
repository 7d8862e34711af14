package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landregistry/internal/platform/config"
)

func TestNew_EmptyURLDisablesRedis(t *testing.T) {
	client, err := New(context.Background(), config.Redis{})
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestNew_InvalidURL(t *testing.T) {
	_, err := New(context.Background(), config.Redis{URL: "://bad"})
	assert.Error(t, err)
}

func TestOptions(t *testing.T) {
	opts, err := options(config.Redis{
		URL:         "redis://:secret@cache:6380/2",
		PoolSize:    25,
		ReadTimeout: 750 * time.Millisecond,
	})
	require.NoError(t, err)

	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 25, opts.PoolSize)
	assert.Equal(t, 750*time.Millisecond, opts.ReadTimeout)
	assert.Zero(t, opts.MinIdleConns, "unset values keep the URL defaults")
}
