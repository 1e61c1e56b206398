package health

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecker_RunCheck(t *testing.T) {
	c := NewChecker(time.Second, nil)
	c.Register("store", func(context.Context) CheckResult {
		return Healthy("reachable")
	})

	result := c.RunCheck(context.Background(), "store")
	assert.Equal(t, "store", result.Name)
	assert.Equal(t, StatusHealthy, result.Status)
	assert.Equal(t, "reachable", result.Message)
	assert.False(t, result.Timestamp.IsZero())
}

func TestChecker_UnknownComponent(t *testing.T) {
	c := NewChecker(time.Second, nil)

	result := c.RunCheck(context.Background(), "missing")
	assert.Equal(t, StatusUnknown, result.Status)
}

func TestChecker_TimeoutReachesCheck(t *testing.T) {
	c := NewChecker(10*time.Millisecond, nil)
	c.Register("slow", func(ctx context.Context) CheckResult {
		select {
		case <-ctx.Done():
			return Unhealthy("timed out")
		case <-time.After(time.Second):
			return Healthy("ok")
		}
	})

	result := c.RunCheck(context.Background(), "slow")
	assert.Equal(t, StatusUnhealthy, result.Status)
}

func TestChecker_SystemRollup(t *testing.T) {
	c := NewChecker(time.Second, nil)
	c.Register("gateway", func(context.Context) CheckResult { return Healthy("") })
	c.Register("limiter", func(context.Context) CheckResult { return Healthy("") })

	system := c.CheckSystem(context.Background())
	assert.Equal(t, StatusHealthy, system.Status)
	assert.Equal(t, 2, system.Summary.Total)
	assert.Equal(t, 2, system.Summary.Healthy)

	c.Register("tracker", func(context.Context) CheckResult { return Degraded("slow writes") })
	system = c.CheckSystem(context.Background())
	assert.Equal(t, StatusDegraded, system.Status)

	c.Register("transport", func(context.Context) CheckResult { return Unhealthy("down") })
	system = c.CheckSystem(context.Background())
	assert.Equal(t, StatusUnhealthy, system.Status)
	assert.Equal(t, 4, system.Summary.Total)
	assert.Equal(t, 1, system.Summary.Unhealthy)
	assert.Equal(t, 1, system.Summary.Degraded)

	require.Contains(t, system.Components, "transport")
	assert.Equal(t, "down", system.Components["transport"].Message)
}

func TestChecker_Unregister(t *testing.T) {
	c := NewChecker(time.Second, nil)
	c.Register("store", func(context.Context) CheckResult { return Healthy("") })
	require.Len(t, c.Components(), 1)

	c.Unregister("store")
	assert.Empty(t, c.Components())
}
