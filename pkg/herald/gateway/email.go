package gateway

import (
	"context"

	"github.com/herald-io/herald/pkg/herald/errors"
	"github.com/herald-io/herald/pkg/herald/notification"
	"github.com/herald-io/herald/pkg/herald/processor"
	"github.com/herald-io/herald/pkg/herald/validation"
	"github.com/herald-io/herald/pkg/logger"
)

// EmailGateway delivers processed email messages through the transport.
// Multipart HTML bodies and attachments travel as opaque payload fields.
type EmailGateway struct {
	base
}

// NewEmailGateway creates the email channel gateway.
func NewEmailGateway(transport Transport, config *Config, log logger.Logger) *EmailGateway {
	return &EmailGateway{base: newBase(transport, config, log)}
}

// Channel returns the email channel.
func (g *EmailGateway) Channel() notification.Channel {
	return notification.ChannelEmail
}

// Send delivers the prepared message to the recipient's address.
func (g *EmailGateway) Send(ctx context.Context, msg *processor.ProcessedMessage, rcpt *notification.Recipient) *SendResult {
	if !validation.ValidEmailAddress(rcpt.ContactInfo) {
		return failure(errors.ErrInvalidToken, "invalid email address %q", rcpt.ContactInfo)
	}

	payload := &Payload{
		Channel:  notification.ChannelEmail,
		Endpoint: rcpt.ContactInfo,
		Subject:  msg.Subject,
		Body:     msg.Body,
	}
	for _, key := range []string{"reply_to", "html_content", "attachments"} {
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
func (g *EmailGateway) TestConnection(ctx context.Context) bool {
	return g.testConnection(ctx)
}
