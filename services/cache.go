package services

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/kemsguy7/wagmi-app/logging"
	"github.com/kemsguy7/wagmi-app/wallet"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const (
	defaultCacheSize   = 256
	retryInitial       = time.Second
	retryMax           = 30 * time.Second
	retryAttempts      = 3
	backgroundDeadline = time.Minute
)

// ErrNotReady is returned by Get when the value is still being fetched.
var ErrNotReady = errors.New("value is still loading")

// FetchFunc loads the value for a cache key.
type FetchFunc[V any] func(ctx context.Context) (V, error)

// QueryCache holds fetched values for a TTL. Identical concurrent fetches share one
// call, failed fetches are retried with exponential backoff.
type QueryCache[V any] struct {
	name       string
	values     *expirable.LRU[string, V]
	group      singleflight.Group
	renderWait time.Duration
	retryBase  time.Duration
	logger     zerolog.Logger
}

func NewQueryCache[V any](name string, ttl, renderWait time.Duration, logger zerolog.Logger) *QueryCache[V] {
	return &QueryCache[V]{
		name:       name,
		values:     expirable.NewLRU[string, V](defaultCacheSize, nil, ttl),
		renderWait: renderWait,
		retryBase:  retryInitial,
		logger: logger.With().
			Str(logging.FieldModule, "query_cache").
			Str("cache", name).
			Logger(),
	}
}

// Peek returns the cached value without fetching.
func (c *QueryCache[V]) Peek(key string) (V, bool) {
	return c.values.Get(key)
}

// Fetch returns the cached value or loads it, blocking until the load finishes or
// ctx is done.
func (c *QueryCache[V]) Fetch(ctx context.Context, key string, fetch FetchFunc[V]) (V, error) {
	if v, ok := c.values.Get(key); ok {
		return v, nil
	}

	return c.wait(ctx, key, fetch, nil)
}

// Get is Fetch bounded by the render wait. On timeout it returns ErrNotReady and the
// load keeps going so a later render finds the value.
func (c *QueryCache[V]) Get(ctx context.Context, key string, fetch FetchFunc[V]) (V, error) {
	if v, ok := c.values.Get(key); ok {
		return v, nil
	}

	timer := time.NewTimer(c.renderWait)
	defer timer.Stop()

	return c.wait(ctx, key, fetch, timer.C)
}

// Invalidate drops a key so the next read refetches it.
func (c *QueryCache[V]) Invalidate(key string) {
	c.values.Remove(key)
	c.group.Forget(key)
}

func (c *QueryCache[V]) Purge() {
	c.values.Purge()
}

func (c *QueryCache[V]) wait(ctx context.Context, key string, fetch FetchFunc[V], deadline <-chan time.Time) (V, error) {
	var zero V

	ch := c.group.DoChan(key, func() (interface{}, error) {
		// the load outlives the request that started it
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), backgroundDeadline)
		defer cancel()

		return c.load(loadCtx, key, fetch)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}

		return res.Val.(V), nil
	case <-deadline:
		return zero, ErrNotReady
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (c *QueryCache[V]) load(ctx context.Context, key string, fetch FetchFunc[V]) (V, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.retryBase
	policy.MaxInterval = retryMax

	v, err := backoff.Retry(ctx, func() (V, error) {
		v, err := fetch(ctx)
		if err != nil && isPermanent(err) {
			return v, backoff.Permanent(err)
		}

		return v, err
	},
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(retryAttempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.logger.Debug().Err(err).Str("key", key).Dur("retry_in", next).Msg("Fetch failed, retrying")
		}),
	)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Fetch failed")
		return v, err
	}

	c.values.Add(key, v)

	return v, nil
}

// isPermanent reports errors that retrying cannot fix.
func isPermanent(err error) bool {
	switch wallet.KindOf(err) {
	case wallet.KindUnsupportedChain, wallet.KindNotReady:
		return true
	default:
		return false
	}
}
