package notification

import (
	"time"

	"github.com/herald-io/herald/pkg/idgen"
)

// Kind classifies message content.
type Kind string

const (
	KindTransactional Kind = "transactional"
	KindMarketing     Kind = "marketing"
	KindInfo          Kind = "info"
)

// Recipient identifies who receives a notification and through which channel.
// ContactInfo holds the channel-specific address: an email address, an E.164
// phone number, a device token, a webhook URL, or a slack handle.
type Recipient struct {
	ID          string  `json:"id"`
	Name        string  `json:"name,omitempty"`
	Channel     Channel `json:"channel"`
	ContactInfo string  `json:"contact_info"`
}

// Message is the content of a notification before channel processing.
type Message struct {
	ID      string `json:"id"`
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body"`
	Kind    Kind   `json:"kind"`
}

// Request is a single notification request. It is immutable once created;
// one orchestration run consumes it, retries reference the same ID.
type Request struct {
	ID          string     `json:"id"`
	Recipient   *Recipient `json:"recipient"`
	Message     *Message   `json:"message"`
	Priority    Priority   `json:"priority"`
	Options     Options    `json:"options,omitempty"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	RequestedBy string     `json:"requested_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewRequest creates a request with a generated ID and creation timestamp.
func NewRequest(recipient *Recipient, message *Message) *Request {
	return &Request{
		ID:        idgen.NotificationID(),
		Recipient: recipient,
		Message:   message,
		Priority:  PriorityNormal,
		CreatedAt: time.Now(),
	}
}

// BulkRequest groups per-recipient requests under one logical operation.
type BulkRequest struct {
	BulkID   string     `json:"bulk_id"`
	Requests []*Request `json:"requests"`
}

// NewBulkRequest creates a bulk request with a generated bulk ID.
func NewBulkRequest(requests ...*Request) *BulkRequest {
	return &BulkRequest{
		BulkID:   idgen.BulkID(),
		Requests: requests,
	}
}

// Size returns the number of per-recipient requests in the batch.
func (b *BulkRequest) Size() int {
	return len(b.Requests)
}
