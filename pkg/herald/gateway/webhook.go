package gateway

import (
	"context"

	"github.com/herald-io/herald/pkg/herald/errors"
	"github.com/herald-io/herald/pkg/herald/notification"
	"github.com/herald-io/herald/pkg/herald/processor"
	"github.com/herald-io/herald/pkg/herald/validation"
	"github.com/herald-io/herald/pkg/logger"
)

// WebhookGateway delivers processed messages to arbitrary HTTP endpoints.
type WebhookGateway struct {
	base
}

// NewWebhookGateway creates the webhook channel gateway.
func NewWebhookGateway(transport Transport, config *Config, log logger.Logger) *WebhookGateway {
	return &WebhookGateway{base: newBase(transport, config, log)}
}

// Channel returns the webhook channel.
func (g *WebhookGateway) Channel() notification.Channel {
	return notification.ChannelWebhook
}

// Send delivers the prepared message to the recipient's URL.
func (g *WebhookGateway) Send(ctx context.Context, msg *processor.ProcessedMessage, rcpt *notification.Recipient) *SendResult {
	if !validation.ValidWebhookURL(rcpt.ContactInfo) {
		return failure(errors.ErrInvalidToken, "invalid webhook url %q", rcpt.ContactInfo)
	}

	return g.deliver(ctx, &Payload{
		Channel:  notification.ChannelWebhook,
		Endpoint: rcpt.ContactInfo,
		Subject:  msg.Subject,
		Body:     msg.Body,
		Fields: map[string]any{
			"request_id": msg.RequestID,
		},
	})
}

// TestConnection reports transport reachability.
func (g *WebhookGateway) TestConnection(ctx context.Context) bool {
	return g.testConnection(ctx)
}
