// Package config assembles the tunables of a herald instance behind
// functional options.
package config

import (
	"time"

	"github.com/herald-io/herald/pkg/herald/gateway"
	"github.com/herald-io/herald/pkg/herald/processor"
	"github.com/herald-io/herald/pkg/herald/ratelimit"
	"github.com/herald-io/herald/pkg/herald/retry"
	"github.com/herald-io/herald/pkg/herald/telemetry"
	"github.com/herald-io/herald/pkg/herald/template"
	"github.com/herald-io/herald/pkg/logger"
)

// Config holds the assembled herald configuration. Build one with New and
// options; zero values are filled with defaults.
type Config struct {
	Logger    logger.Logger
	RateLimit *ratelimit.Config
	Retry     *retry.Policy
	Processor *processor.Config
	Gateway   *gateway.Config
	Telemetry *telemetry.Config

	// Transport carries deliveries to providers. Defaults to the in-memory
	// transport.
	Transport gateway.Transport
	// SweepInterval is the scheduler's sweep cadence.
	SweepInterval time.Duration
	// HealthTimeout bounds each component health probe.
	HealthTimeout time.Duration
	// Templates is the shared named-template registry.
	Templates *template.Registry
}

// Option mutates a Config during construction.
type Option interface {
	apply(*Config)
}

type optionFunc func(*Config)

func (f optionFunc) apply(c *Config) {
	f(c)
}

// New builds a configuration from defaults and the given options.
func New(opts ...Option) *Config {
	c := &Config{
		Logger:        logger.Default,
		RateLimit:     ratelimit.DefaultConfig(),
		Retry:         retry.DefaultPolicy(),
		Processor:     processor.DefaultConfig(),
		Gateway:       gateway.DefaultConfig(),
		Telemetry:     telemetry.DefaultConfig(),
		SweepInterval: time.Second,
		HealthTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt.apply(c)
	}
	if c.Templates == nil {
		c.Templates = c.Processor.Templates
	} else {
		c.Processor.Templates = c.Templates
	}
	if c.Transport == nil {
		c.Transport = gateway.NewMemoryTransport()
	}
	return c
}

// WithLogger sets the logger used across components.
func WithLogger(log logger.Logger) Option {
	return optionFunc(func(c *Config) {
		c.Logger = log
	})
}

// WithSilentLogger discards all log output.
func WithSilentLogger() Option {
	return optionFunc(func(c *Config) {
		c.Logger = logger.Discard
	})
}

// WithRateLimit sets the per-recipient window limit and length.
func WithRateLimit(limit int, window time.Duration) Option {
	return optionFunc(func(c *Config) {
		c.RateLimit.Limit = limit
		c.RateLimit.Window = window
	})
}

// WithInterSendDelay sets the advised spacing between bulk sends.
func WithInterSendDelay(delay time.Duration) Option {
	return optionFunc(func(c *Config) {
		c.RateLimit.InterSendDelay = delay
	})
}

// WithMaxAttempts bounds delivery attempts per request.
func WithMaxAttempts(attempts int) Option {
	return optionFunc(func(c *Config) {
		c.Retry.MaxAttempts = attempts
	})
}

// WithBackoff sets the retry backoff curve.
func WithBackoff(base time.Duration, multiplier float64, cap time.Duration) Option {
	return optionFunc(func(c *Config) {
		c.Retry.BaseDelay = base
		c.Retry.Multiplier = multiplier
		c.Retry.MaxDelay = cap
	})
}

// WithGatewayTimeout bounds one transport call.
func WithGatewayTimeout(timeout time.Duration) Option {
	return optionFunc(func(c *Config) {
		c.Gateway.Timeout = timeout
	})
}

// WithSMSLimits sets the single-message budget and the concatenated hard
// limit for SMS bodies.
func WithSMSLimits(single, concatenated int) Option {
	return optionFunc(func(c *Config) {
		c.Processor.SMSMaxLength = single
		c.Gateway.SMSMaxConcatenated = concatenated
	})
}

// WithPushLimits sets the preview length and payload budget for push
// notifications.
func WithPushLimits(preview, payload int) Option {
	return optionFunc(func(c *Config) {
		c.Processor.PushPreviewLength = preview
		c.Processor.PushMaxPayload = payload
		c.Gateway.PushMaxPayload = payload
	})
}

// WithTransport sets the delivery transport shared by all gateways.
func WithTransport(t gateway.Transport) Option {
	return optionFunc(func(c *Config) {
		c.Transport = t
	})
}

// WithTemplates sets the named-template registry used by the email pipeline.
func WithTemplates(registry *template.Registry) Option {
	return optionFunc(func(c *Config) {
		c.Templates = registry
	})
}

// WithSweepInterval sets the scheduler sweep cadence.
func WithSweepInterval(interval time.Duration) Option {
	return optionFunc(func(c *Config) {
		c.SweepInterval = interval
	})
}

// WithTelemetry enables OTLP telemetry for the given service identity.
func WithTelemetry(serviceName, version, environment, otlpEndpoint string) Option {
	return optionFunc(func(c *Config) {
		c.Telemetry.Enabled = true
		c.Telemetry.ServiceName = serviceName
		c.Telemetry.ServiceVersion = version
		c.Telemetry.Environment = environment
		c.Telemetry.OTLPEndpoint = otlpEndpoint
	})
}

// WithTelemetryDisabled forces the no-op telemetry provider.
func WithTelemetryDisabled() Option {
	return optionFunc(func(c *Config) {
		c.Telemetry.Enabled = false
	})
}
