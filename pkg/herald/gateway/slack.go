package gateway

import (
	"context"
	"strings"

	"github.com/herald-io/herald/pkg/herald/errors"
	"github.com/herald-io/herald/pkg/herald/notification"
	"github.com/herald-io/herald/pkg/herald/processor"
	"github.com/herald-io/herald/pkg/herald/validation"
	"github.com/herald-io/herald/pkg/logger"
)

// SlackGateway delivers processed messages to slack channels (#name) and
// users (@name).
type SlackGateway struct {
	base
}

// NewSlackGateway creates the slack channel gateway.
func NewSlackGateway(transport Transport, config *Config, log logger.Logger) *SlackGateway {
	return &SlackGateway{base: newBase(transport, config, log)}
}

// Channel returns the slack channel.
func (g *SlackGateway) Channel() notification.Channel {
	return notification.ChannelSlack
}

// Send delivers the prepared message to the recipient's handle.
func (g *SlackGateway) Send(ctx context.Context, msg *processor.ProcessedMessage, rcpt *notification.Recipient) *SendResult {
	if !validation.ValidSlackHandle(rcpt.ContactInfo) {
		return failure(errors.ErrInvalidToken, "invalid slack handle %q", rcpt.ContactInfo)
	}

	targetKind := "channel"
	if strings.HasPrefix(rcpt.ContactInfo, "@") {
		targetKind = "user"
	}

	body := msg.Body
	if msg.Subject != "" {
		body = "*" + msg.Subject + "*\n" + body
	}

	return g.deliver(ctx, &Payload{
		Channel:  notification.ChannelSlack,
		Endpoint: rcpt.ContactInfo,
		Body:     body,
		Fields: map[string]any{
			"target_kind": targetKind,
		},
	})
}

// TestConnection reports transport reachability.
func (g *SlackGateway) TestConnection(ctx context.Context) bool {
	return g.testConnection(ctx)
}
