package gateway

import (
	"context"
	"unicode/utf8"

	"github.com/herald-io/herald/pkg/herald/errors"
	"github.com/herald-io/herald/pkg/herald/notification"
	"github.com/herald-io/herald/pkg/herald/processor"
	"github.com/herald-io/herald/pkg/herald/validation"
	"github.com/herald-io/herald/pkg/logger"
)

// SMSGateway delivers processed SMS bodies through the transport, enforcing
// the concatenated-message hard limit.
type SMSGateway struct {
	base
}

// NewSMSGateway creates the SMS channel gateway.
func NewSMSGateway(transport Transport, config *Config, log logger.Logger) *SMSGateway {
	return &SMSGateway{base: newBase(transport, config, log)}
}

// Channel returns the SMS channel.
func (g *SMSGateway) Channel() notification.Channel {
	return notification.ChannelSMS
}

// Send delivers the prepared message to the recipient's phone number.
func (g *SMSGateway) Send(ctx context.Context, msg *processor.ProcessedMessage, rcpt *notification.Recipient) *SendResult {
	if !validation.ValidPhoneNumber(rcpt.ContactInfo) {
		return failure(errors.ErrInvalidToken, "invalid phone number %q", rcpt.ContactInfo)
	}
	if limit, count := g.config.SMSMaxConcatenated, utf8.RuneCountInString(msg.Body); limit > 0 && count > limit {
		return failure(errors.ErrPayloadTooLarge,
			"sms body is %d characters, concatenated limit is %d", count, limit)
	}

	return g.deliver(ctx, &Payload{
		Channel:  notification.ChannelSMS,
		Endpoint: rcpt.ContactInfo,
		Body:     msg.Body,
	})
}

// TestConnection reports transport reachability.
func (g *SMSGateway) TestConnection(ctx context.Context) bool {
	return g.testConnection(ctx)
}
