package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kemsguy7/wagmi-app/logging/logtest"
	"github.com/kemsguy7/wagmi-app/wallet"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, renderWait time.Duration) *QueryCache[string] {
	cache := NewQueryCache[string]("test", time.Minute, renderWait, logtest.New(t))
	cache.retryBase = time.Millisecond

	return cache
}

func TestQueryCache(t *testing.T) {
	t.Run("caches fetched value", func(t *testing.T) {
		// ARRANGE
		cache := newTestCache(t, time.Second)
		var calls atomic.Int32

		fetch := func(context.Context) (string, error) {
			calls.Add(1)
			return "vitalik.eth", nil
		}

		// ACT
		first, err1 := cache.Get(context.Background(), "name", fetch)
		second, err2 := cache.Get(context.Background(), "name", fetch)
		peeked, ok := cache.Peek("name")

		// ASSERT
		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.Equal(t, "vitalik.eth", first)
		assert.Equal(t, "vitalik.eth", second)
		assert.True(t, ok)
		assert.Equal(t, "vitalik.eth", peeked)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("deduplicates concurrent fetches", func(t *testing.T) {
		// ARRANGE
		cache := newTestCache(t, time.Second)
		var calls atomic.Int32
		release := make(chan struct{})

		fetch := func(context.Context) (string, error) {
			calls.Add(1)
			<-release
			return "value", nil
		}

		// ACT
		var wg sync.WaitGroup
		results := make([]string, 5)

		for i := range results {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[i], _ = cache.Fetch(context.Background(), "key", fetch)
			}()
		}

		time.Sleep(50 * time.Millisecond)
		close(release)
		wg.Wait()

		// ASSERT
		assert.Equal(t, int32(1), calls.Load())
		for _, r := range results {
			assert.Equal(t, "value", r)
		}
	})

	t.Run("retries up to three attempts", func(t *testing.T) {
		tests := []struct {
			name          string
			failures      int32
			expectedErr   bool
			expectedCalls int32
		}{
			{name: "succeeds first time", failures: 0, expectedCalls: 1},
			{name: "succeeds on third attempt", failures: 2, expectedCalls: 3},
			{name: "gives up after three", failures: 10, expectedErr: true, expectedCalls: 3},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				// ARRANGE
				cache := newTestCache(t, time.Second)
				var calls atomic.Int32

				fetch := func(context.Context) (string, error) {
					if calls.Add(1) <= tt.failures {
						return "", errors.New("rpc unavailable")
					}

					return "ok", nil
				}

				// ACT
				v, err := cache.Fetch(context.Background(), "key", fetch)

				// ASSERT
				assert.Equal(t, tt.expectedCalls, calls.Load())

				if tt.expectedErr {
					require.Error(t, err)
					_, cached := cache.Peek("key")
					assert.False(t, cached)
					return
				}

				require.NoError(t, err)
				assert.Equal(t, "ok", v)
			})
		}
	})

	t.Run("permanent errors are not retried", func(t *testing.T) {
		// ARRANGE
		cache := newTestCache(t, time.Second)
		var calls atomic.Int32

		fetch := func(context.Context) (string, error) {
			calls.Add(1)
			return "", wallet.NewError(wallet.KindUnsupportedChain, "no client")
		}

		// ACT
		_, err := cache.Fetch(context.Background(), "key", fetch)

		// ASSERT
		require.Error(t, err)
		assert.Equal(t, wallet.KindUnsupportedChain, wallet.KindOf(err))
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("slow fetch is not ready but completes in background", func(t *testing.T) {
		// ARRANGE
		cache := newTestCache(t, 20*time.Millisecond)
		release := make(chan struct{})

		fetch := func(context.Context) (string, error) {
			<-release
			return "late", nil
		}

		// ACT
		_, err := cache.Get(context.Background(), "key", fetch)
		close(release)

		// ASSERT
		require.ErrorIs(t, err, ErrNotReady)
		assert.Eventually(t, func() bool {
			v, ok := cache.Peek("key")
			return ok && v == "late"
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("invalidate forces refetch", func(t *testing.T) {
		// ARRANGE
		cache := newTestCache(t, time.Second)
		var calls atomic.Int32

		fetch := func(context.Context) (string, error) {
			calls.Add(1)
			return "v", nil
		}

		_, err := cache.Fetch(context.Background(), "key", fetch)
		require.NoError(t, err)

		// ACT
		cache.Invalidate("key")
		_, err = cache.Fetch(context.Background(), "key", fetch)

		// ASSERT
		require.NoError(t, err)
		assert.Equal(t, int32(2), calls.Load())
	})
}
