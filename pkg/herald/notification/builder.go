package notification

import (
	"fmt"
	"time"

	"github.com/herald-io/herald/pkg/idgen"
)

// Builder assembles notification requests fluently.
type Builder struct {
	recipient   *Recipient
	subject     string
	body        string
	kind        Kind
	priority    Priority
	options     Options
	scheduledAt *time.Time
	requestedBy string
}

// NewBuilder creates an empty request builder.
func NewBuilder() *Builder {
	return &Builder{
		kind:     KindTransactional,
		priority: PriorityNormal,
		options:  make(Options),
	}
}

// To sets the recipient.
func (b *Builder) To(id, name string, channel Channel, contactInfo string) *Builder {
	b.recipient = &Recipient{ID: id, Name: name, Channel: channel, ContactInfo: contactInfo}
	return b
}

// ToRecipient sets a prebuilt recipient.
func (b *Builder) ToRecipient(r *Recipient) *Builder {
	b.recipient = r
	return b
}

// Subject sets the message subject.
func (b *Builder) Subject(subject string) *Builder {
	b.subject = subject
	return b
}

// Body sets the message body.
func (b *Builder) Body(body string) *Builder {
	b.body = body
	return b
}

// Kind sets the message kind.
func (b *Builder) Kind(kind Kind) *Builder {
	b.kind = kind
	return b
}

// Priority sets the request priority.
func (b *Builder) Priority(p Priority) *Builder {
	b.priority = p
	return b
}

// Option sets a single channel option.
func (b *Builder) Option(key string, value any) *Builder {
	b.options[key] = value
	return b
}

// ScheduleAt defers the send until the given time.
func (b *Builder) ScheduleAt(t time.Time) *Builder {
	b.scheduledAt = &t
	return b
}

// RequestedBy records the requester identity for delivery confirmations.
func (b *Builder) RequestedBy(identity string) *Builder {
	b.requestedBy = identity
	return b
}

// Build assembles the request. Structural requirements are checked here;
// channel-specific format rules are enforced by the validation package.
func (b *Builder) Build() (*Request, error) {
	if b.recipient == nil {
		return nil, fmt.Errorf("notification: recipient is required")
	}
	if b.body == "" {
		return nil, fmt.Errorf("notification: message body is required")
	}
	if !b.priority.IsValid() {
		return nil, fmt.Errorf("notification: invalid priority %d", b.priority)
	}

	req := &Request{
		ID:        idgen.NotificationID(),
		Recipient: b.recipient,
		Message: &Message{
			ID:      idgen.MessageID(),
			Subject: b.subject,
			Body:    b.body,
			Kind:    b.kind,
		},
		Priority:    b.priority,
		ScheduledAt: b.scheduledAt,
		RequestedBy: b.requestedBy,
		CreatedAt:   time.Now(),
	}
	if len(b.options) > 0 {
		req.Options = b.options.Clone()
	}
	return req, nil
}
