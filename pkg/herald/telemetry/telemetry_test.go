package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herald-io/herald/pkg/herald/errors"
	"github.com/herald-io/herald/pkg/herald/notification"
)

func TestNewProvider_DisabledIsNoop(t *testing.T) {
	p, err := NewProvider(nil)
	require.NoError(t, err)

	// No instruments are created, every recording path must be safe.
	ctx := context.Background()
	p.RecordDelivered(ctx, notification.ChannelEmail, time.Millisecond)
	p.RecordFailed(ctx, notification.ChannelSMS, time.Millisecond, errors.ErrConnection)
	p.RecordRetry(ctx, notification.ChannelPush, 1)
	p.AddScheduled(ctx, 1)

	spanCtx, span := p.TraceDispatch(ctx, "req-1", notification.ChannelEmail)
	assert.NotNil(t, spanCtx)
	p.EndSpan(span, nil)
	p.EndSpan(span, errors.New(errors.ErrInternal, "boom"))
	p.EndSpan(nil, nil)

	assert.NoError(t, p.Shutdown(ctx))
	assert.NotNil(t, p.Tracer())
	assert.NotNil(t, p.Meter())
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, "herald", cfg.ServiceName)
	assert.Equal(t, 1.0, cfg.SampleRate)
	assert.True(t, cfg.TracingEnabled)
	assert.True(t, cfg.MetricsEnabled)
}
