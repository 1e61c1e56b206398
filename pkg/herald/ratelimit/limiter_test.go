package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herald-io/herald/pkg/herald/errors"
)

func testLimiter(limit int, window time.Duration) (*RecipientLimiter, *FakeClock) {
	clock := NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	l := NewRecipientLimiterWithClock(&Config{
		Limit:          limit,
		Window:         window,
		InterSendDelay: 50 * time.Millisecond,
	}, clock)
	return l, clock
}

func TestCheckRateLimit_DeniesOverLimit(t *testing.T) {
	l, _ := testLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		require.NoError(t, l.CheckRateLimit("user-1"))
	}

	err := l.CheckRateLimit("user-1")
	require.Error(t, err)
	assert.Equal(t, errors.ErrRateLimitExceeded, errors.CodeOf(err))

	// Other recipients are unaffected.
	assert.NoError(t, l.CheckRateLimit("user-2"))
}

func TestCheckRateLimit_WindowRollover(t *testing.T) {
	l, clock := testLimiter(2, time.Minute)

	require.NoError(t, l.CheckRateLimit("user-1"))
	require.NoError(t, l.CheckRateLimit("user-1"))
	require.Error(t, l.CheckRateLimit("user-1"))

	clock.Advance(time.Minute + time.Second)
	assert.NoError(t, l.CheckRateLimit("user-1"), "window rollover must readmit")
	assert.Equal(t, 1, l.WindowUsage("user-1"))
}

func TestCheckRateLimit_PartialExpiry(t *testing.T) {
	l, clock := testLimiter(2, time.Minute)

	require.NoError(t, l.CheckRateLimit("user-1"))
	clock.Advance(40 * time.Second)
	require.NoError(t, l.CheckRateLimit("user-1"))
	require.Error(t, l.CheckRateLimit("user-1"))

	// The first admission expires, the second is still inside the window.
	clock.Advance(30 * time.Second)
	assert.NoError(t, l.CheckRateLimit("user-1"))
	assert.Error(t, l.CheckRateLimit("user-1"))
}

func TestDelayAdvice(t *testing.T) {
	l, clock := testLimiter(10, time.Minute)

	assert.False(t, l.RequiresDelay(), "no deliveries yet")

	l.RecordDelivery("user-1")
	assert.True(t, l.RequiresDelay())
	assert.Equal(t, 50*time.Millisecond, l.DelayAmount())

	clock.Advance(20 * time.Millisecond)
	assert.Equal(t, 30*time.Millisecond, l.DelayAmount())

	clock.Advance(40 * time.Millisecond)
	assert.False(t, l.RequiresDelay())
	assert.Zero(t, l.DelayAmount())
}

func TestStatsAndReset(t *testing.T) {
	l, _ := testLimiter(1, time.Minute)

	require.NoError(t, l.CheckRateLimit("user-1"))
	require.Error(t, l.CheckRateLimit("user-1"))

	admitted, denied := l.Stats()
	assert.Equal(t, int64(1), admitted)
	assert.Equal(t, int64(1), denied)

	l.Reset()
	assert.NoError(t, l.CheckRateLimit("user-1"))
}

func TestIsHealthy(t *testing.T) {
	l, _ := testLimiter(5, time.Minute)
	assert.True(t, l.IsHealthy())

	broken := NewRecipientLimiter(&Config{Limit: 0, Window: time.Minute})
	assert.False(t, broken.IsHealthy())
}

func TestConcurrentAdmission(t *testing.T) {
	l := NewRecipientLimiter(&Config{Limit: 100, Window: time.Minute})

	var wg sync.WaitGroup
	admitted := make(chan struct{}, 1000)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if l.CheckRateLimit("shared") == nil {
					admitted <- struct{}{}
				}
				l.RecordDelivery("shared")
			}
		}()
	}
	wg.Wait()
	close(admitted)

	count := 0
	for range admitted {
		count++
	}
	assert.Equal(t, 100, count, "exactly the window limit may be admitted")
}
