package gateway

import (
	"context"

	"github.com/herald-io/herald/pkg/herald/errors"
	"github.com/herald-io/herald/pkg/herald/notification"
	"github.com/herald-io/herald/pkg/herald/processor"
	"github.com/herald-io/herald/pkg/herald/validation"
	"github.com/herald-io/herald/pkg/logger"
)

// PushGateway delivers processed push notifications through the transport,
// enforcing the total payload byte budget.
type PushGateway struct {
	base
}

// NewPushGateway creates the push channel gateway.
func NewPushGateway(transport Transport, config *Config, log logger.Logger) *PushGateway {
	return &PushGateway{base: newBase(transport, config, log)}
}

// Channel returns the push channel.
func (g *PushGateway) Channel() notification.Channel {
	return notification.ChannelPush
}

// Send delivers the prepared message to the recipient's device token.
func (g *PushGateway) Send(ctx context.Context, msg *processor.ProcessedMessage, rcpt *notification.Recipient) *SendResult {
	if !validation.ValidDeviceToken(rcpt.ContactInfo) {
		return failure(errors.ErrInvalidToken, "invalid device token")
	}

	if limit := g.config.PushMaxPayload; limit > 0 {
		estimate := len(msg.Subject) + len(msg.Body) + g.config.PushPayloadOverhead
		if estimate > limit {
			return failure(errors.ErrPayloadTooLarge,
				"estimated payload %d bytes exceeds limit %d", estimate, limit)
		}
	}

	payload := &Payload{
		Channel:  notification.ChannelPush,
		Endpoint: rcpt.ContactInfo,
		Subject:  msg.Subject,
		Body:     msg.Body,
	}
	for _, key := range []string{"badge_count", "sound", "custom_data"} {
		if v, ok := msg.Metadata[key]; ok {
			if payload.Fields == nil {
				payload.Fields = make(map[string]any)
			}
			payload.Fields[key] = v
		}
	}

	return g.deliver(ctx, payload)
}

// TestConnection reports transport reachability.
func (g *PushGateway) TestConnection(ctx context.Context) bool {
	return g.testConnection(ctx)
}
