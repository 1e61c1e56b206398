package retry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herald-io/herald/pkg/herald/errors"
	"github.com/herald-io/herald/pkg/herald/ratelimit"
)

func TestPolicy_Delay(t *testing.T) {
	p := DefaultPolicy() // base 2s, x2, cap 60s

	assert.Equal(t, 2*time.Second, p.Delay(1))
	assert.Equal(t, 4*time.Second, p.Delay(2))
	assert.Equal(t, 8*time.Second, p.Delay(3))
	assert.Equal(t, 60*time.Second, p.Delay(10), "delay must be capped")
}

func TestPolicy_Jitter(t *testing.T) {
	p := &Policy{MaxAttempts: 3, BaseDelay: time.Second, Multiplier: 2, MaxDelay: time.Minute, MaxJitter: 500 * time.Millisecond}

	for i := 0; i < 50; i++ {
		d := p.Delay(1)
		assert.GreaterOrEqual(t, d, time.Second)
		assert.Less(t, d, 1500*time.Millisecond)
	}
}

func TestShouldRetry_Classification(t *testing.T) {
	m := NewManager(nil)

	assert.True(t, m.ShouldRetry("req-1", errors.ErrConnection))
	assert.True(t, m.ShouldRetry("req-1", errors.ErrGateway))
	assert.True(t, m.ShouldRetry("req-1", errors.ErrService))

	assert.False(t, m.ShouldRetry("req-1", errors.ErrValidation))
	assert.False(t, m.ShouldRetry("req-1", errors.ErrInvalidToken))
	assert.False(t, m.ShouldRetry("req-1", errors.ErrPayloadTooLarge))
	assert.False(t, m.ShouldRetry("req-1", errors.ErrRateLimitExceeded))
}

func TestScheduleRetry_AttemptProgression(t *testing.T) {
	clock := ratelimit.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	m := NewManagerWithClock(DefaultPolicy(), clock)

	first, err := m.ScheduleRetry("req-1", errors.ErrConnection)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Attempt)
	assert.Equal(t, clock.Now().Add(2*time.Second), first.ScheduledAt)

	second, err := m.ScheduleRetry("req-1", errors.ErrConnection)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Attempt)
	assert.Equal(t, 4*time.Second, second.Delay)

	assert.Equal(t, 2, m.AttemptCount("req-1"))
	assert.Equal(t, 0, m.AttemptCount("req-other"))
}

func TestScheduleRetry_BudgetExhaustion(t *testing.T) {
	m := NewManager(&Policy{MaxAttempts: 2, BaseDelay: time.Second, Multiplier: 2, MaxDelay: time.Minute})

	for i := 1; i <= 2; i++ {
		attempt, err := m.ScheduleRetry("req-1", errors.ErrService)
		require.NoError(t, err)
		assert.Equal(t, i, attempt.Attempt)
		assert.LessOrEqual(t, attempt.Attempt, m.MaxAttempts())
	}

	assert.False(t, m.ShouldRetry("req-1", errors.ErrService))
	_, err := m.ScheduleRetry("req-1", errors.ErrService)
	require.Error(t, err)
	assert.Equal(t, errors.ErrRetryExhausted, errors.CodeOf(err))
}

func TestForget_ResetsBudget(t *testing.T) {
	m := NewManager(&Policy{MaxAttempts: 1, BaseDelay: time.Second, Multiplier: 2, MaxDelay: time.Minute})

	_, err := m.ScheduleRetry("req-1", errors.ErrConnection)
	require.NoError(t, err)
	assert.False(t, m.ShouldRetry("req-1", errors.ErrConnection))

	m.Forget("req-1")
	assert.True(t, m.ShouldRetry("req-1", errors.ErrConnection))
}
