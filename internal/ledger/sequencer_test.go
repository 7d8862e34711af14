package ledger

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySequencer(t *testing.T) {
	ctx := context.Background()

	t.Run("starts after the seed", func(t *testing.T) {
		seq := NewMemorySequencer(100)
		h, err := seq.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(101), h)
		assert.Equal(t, uint64(101), seq.Current())
	})

	t.Run("concurrent callers never share a height", func(t *testing.T) {
		seq := NewMemorySequencer(0)
		const n = 200

		var (
			mu   sync.Mutex
			seen = make(map[uint64]bool, n)
			wg   sync.WaitGroup
		)
		for range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				h, err := seq.Next(ctx)
				assert.NoError(t, err)
				mu.Lock()
				seen[h] = true
				mu.Unlock()
			}()
		}
		wg.Wait()

		assert.Len(t, seen, n)
		assert.Equal(t, uint64(n), seq.Current())
	})
}
