// Package gateway contains the channel gateway adapters that hand prepared
// messages to a delivery transport. Gateways enforce channel payload
// constraints and classify transport failures into the herald error taxonomy;
// the transport itself is an injected collaborator.
package gateway

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/herald-io/herald/pkg/herald/errors"
	"github.com/herald-io/herald/pkg/herald/notification"
	"github.com/herald-io/herald/pkg/herald/processor"
	"github.com/herald-io/herald/pkg/logger"
)

// SendResult is the typed outcome of one gateway send.
type SendResult struct {
	Success   bool           `json:"success"`
	MessageID string         `json:"message_id,omitempty"`
	ErrorCode errors.Code    `json:"error_code,omitempty"`
	Response  string         `json:"response,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Gateway delivers prepared messages for one channel.
type Gateway interface {
	// Channel returns the channel this gateway serves.
	Channel() notification.Channel
	// Send delivers a prepared message to the recipient.
	Send(ctx context.Context, msg *processor.ProcessedMessage, rcpt *notification.Recipient) *SendResult
	// TestConnection reports whether the underlying transport is reachable.
	TestConnection(ctx context.Context) bool
}

// Config holds gateway-level constraints shared across channels.
type Config struct {
	// Timeout bounds one transport call. Expiry is treated as a retryable
	// connection error.
	Timeout time.Duration
	// SMSMaxConcatenated is the hard limit for concatenated SMS bodies.
	SMSMaxConcatenated int
	// PushMaxPayload is the hard payload limit in bytes.
	PushMaxPayload int
	// PushPayloadOverhead estimates the fixed envelope share of the payload.
	PushPayloadOverhead int
}

// DefaultConfig returns the default gateway configuration.
func DefaultConfig() *Config {
	return &Config{
		Timeout:             30 * time.Second,
		SMSMaxConcatenated:  1600,
		PushMaxPayload:      4096,
		PushPayloadOverhead: 256,
	}
}

// base carries the pieces every channel gateway shares.
type base struct {
	transport Transport
	config    *Config
	logger    logger.Logger
}

func newBase(transport Transport, config *Config, log logger.Logger) base {
	if config == nil {
		config = DefaultConfig()
	}
	if log == nil {
		log = logger.Discard
	}
	return base{transport: transport, config: config, logger: log}
}

// deliver runs one transport call under the configured timeout and folds the
// outcome into a SendResult.
func (b *base) deliver(ctx context.Context, payload *Payload) *SendResult {
	callCtx := ctx
	if b.config.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, b.config.Timeout)
		defer cancel()
	}

	delivery, err := b.transport.Deliver(callCtx, payload)
	if err != nil {
		code := classifyTransportError(err)
		b.logger.Warn("gateway delivery failed",
			"channel", payload.Channel, "endpoint", payload.Endpoint, "code", code, "error", err)
		return &SendResult{Success: false, ErrorCode: code, Response: err.Error()}
	}

	result := &SendResult{Success: true, MessageID: delivery.MessageID}
	if delivery.Response != "" {
		result.Response = delivery.Response
	}
	b.logger.Debug("gateway delivery succeeded",
		"channel", payload.Channel, "message_id", delivery.MessageID)
	return result
}

// testConnection is the shared TestConnection implementation.
func (b *base) testConnection(ctx context.Context) bool {
	callCtx := ctx
	if b.config.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, b.config.Timeout)
		defer cancel()
	}
	return b.transport.Check(callCtx) == nil
}

// classifyTransportError maps a transport failure onto the error taxonomy.
// Timeouts and cancellations count as connection errors; errors already
// carrying a herald code keep it.
func classifyTransportError(err error) errors.Code {
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(err, context.Canceled) {
		return errors.ErrConnection
	}
	var he *errors.HeraldError
	if stderrors.As(err, &he) {
		return he.Code
	}
	return errors.ErrConnection
}

// failure builds a failed SendResult with a formatted reason.
func failure(code errors.Code, format string, args ...any) *SendResult {
	return &SendResult{Success: false, ErrorCode: code, Response: fmt.Sprintf(format, args...)}
}

// Registry holds one gateway per channel.
type Registry struct {
	mu       sync.RWMutex
	gateways map[notification.Channel]Gateway
}

// NewRegistry creates an empty gateway registry.
func NewRegistry() *Registry {
	return &Registry{gateways: make(map[notification.Channel]Gateway)}
}

// Register adds or replaces the gateway for its channel.
func (r *Registry) Register(g Gateway) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gateways[g.Channel()] = g
}

// Get returns the gateway for the channel.
func (r *Registry) Get(channel notification.Channel) (Gateway, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.gateways[channel]
	return g, ok
}

// Channels returns the channels with a registered gateway.
func (r *Registry) Channels() []notification.Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	channels := make([]notification.Channel, 0, len(r.gateways))
	for c := range r.gateways {
		channels = append(channels, c)
	}
	return channels
}

// NewDefaultRegistry registers all five channel gateways over one transport.
func NewDefaultRegistry(transport Transport, config *Config, log logger.Logger) *Registry {
	r := NewRegistry()
	r.Register(NewEmailGateway(transport, config, log))
	r.Register(NewSMSGateway(transport, config, log))
	r.Register(NewPushGateway(transport, config, log))
	r.Register(NewWebhookGateway(transport, config, log))
	r.Register(NewSlackGateway(transport, config, log))
	return r
}
