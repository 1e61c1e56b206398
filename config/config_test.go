package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herald-io/herald/pkg/herald/gateway"
	"github.com/herald-io/herald/pkg/herald/template"
	"github.com/herald-io/herald/pkg/logger"
)

func TestNew_Defaults(t *testing.T) {
	c := New()

	assert.Equal(t, 3, c.Retry.MaxAttempts)
	assert.Equal(t, 2*time.Second, c.Retry.BaseDelay)
	assert.Equal(t, 2.0, c.Retry.Multiplier)
	assert.Equal(t, 60*time.Second, c.Retry.MaxDelay)

	assert.Equal(t, 10, c.RateLimit.Limit)
	assert.Equal(t, time.Minute, c.RateLimit.Window)

	assert.Equal(t, 160, c.Processor.SMSMaxLength)
	assert.Equal(t, 1600, c.Gateway.SMSMaxConcatenated)
	assert.Equal(t, 4096, c.Gateway.PushMaxPayload)
	assert.Equal(t, 30*time.Second, c.Gateway.Timeout)

	assert.False(t, c.Telemetry.Enabled)
	require.NotNil(t, c.Transport)
	require.NotNil(t, c.Templates)
	assert.Same(t, c.Templates, c.Processor.Templates)
}

func TestNew_Options(t *testing.T) {
	transport := gateway.NewMemoryTransport()
	templates := template.NewRegistry()

	c := New(
		WithSilentLogger(),
		WithRateLimit(5, 30*time.Second),
		WithInterSendDelay(50*time.Millisecond),
		WithMaxAttempts(7),
		WithBackoff(time.Second, 3.0, 90*time.Second),
		WithGatewayTimeout(5*time.Second),
		WithSMSLimits(70, 700),
		WithPushLimits(80, 2048),
		WithTransport(transport),
		WithTemplates(templates),
		WithSweepInterval(100*time.Millisecond),
	)

	assert.Equal(t, logger.Discard, c.Logger)
	assert.Equal(t, 5, c.RateLimit.Limit)
	assert.Equal(t, 30*time.Second, c.RateLimit.Window)
	assert.Equal(t, 50*time.Millisecond, c.RateLimit.InterSendDelay)
	assert.Equal(t, 7, c.Retry.MaxAttempts)
	assert.Equal(t, time.Second, c.Retry.BaseDelay)
	assert.Equal(t, 3.0, c.Retry.Multiplier)
	assert.Equal(t, 90*time.Second, c.Retry.MaxDelay)
	assert.Equal(t, 5*time.Second, c.Gateway.Timeout)
	assert.Equal(t, 70, c.Processor.SMSMaxLength)
	assert.Equal(t, 700, c.Gateway.SMSMaxConcatenated)
	assert.Equal(t, 80, c.Processor.PushPreviewLength)
	assert.Equal(t, 2048, c.Gateway.PushMaxPayload)
	assert.Same(t, transport, c.Transport)
	assert.Same(t, templates, c.Templates)
	assert.Same(t, templates, c.Processor.Templates)
	assert.Equal(t, 100*time.Millisecond, c.SweepInterval)
}

func TestNew_Telemetry(t *testing.T) {
	c := New(WithTelemetry("svc", "2.0", "staging", "http://collector:4318"))
	assert.True(t, c.Telemetry.Enabled)
	assert.Equal(t, "svc", c.Telemetry.ServiceName)
	assert.Equal(t, "staging", c.Telemetry.Environment)

	c = New(WithTelemetry("svc", "2.0", "staging", ""), WithTelemetryDisabled())
	assert.False(t, c.Telemetry.Enabled)
}
