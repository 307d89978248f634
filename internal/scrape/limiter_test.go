package scrape

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLimiterNeverExceedsCapacity holds slots while sleeping and tracks the
// concurrent holder count independently of the limiter's own counters.
func TestLimiterNeverExceedsCapacity(t *testing.T) {
	t.Parallel()

	limiter := NewLimiter(5)
	var holders, maxHolders atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 26; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := limiter.Acquire(context.Background())
			if !assert.NoError(t, err) {
				return
			}
			defer release()

			n := holders.Add(1)
			for {
				m := maxHolders.Load()
				if n <= m || maxHolders.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			holders.Add(-1)
		}()
	}
	wg.Wait()

	require.LessOrEqual(t, maxHolders.Load(), int64(5))
	require.LessOrEqual(t, limiter.Peak(), 5)
	require.Positive(t, limiter.Peak())
	require.Equal(t, 0, limiter.InFlight())
}

func TestLimiterReleaseIsIdempotent(t *testing.T) {
	t.Parallel()

	limiter := NewLimiter(1)
	release, err := limiter.Acquire(context.Background())
	require.NoError(t, err)
	release()
	release()
	require.Equal(t, 0, limiter.InFlight())

	second, err := limiter.Acquire(context.Background())
	require.NoError(t, err)
	defer second()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = limiter.Acquire(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLimiterDefaultsCapacity(t *testing.T) {
	t.Parallel()

	require.Equal(t, DefaultConcurrency, NewLimiter(0).Capacity())
	require.Equal(t, 3, NewLimiter(3).Capacity())
}
