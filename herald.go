// Package herald is a multi-channel notification delivery orchestrator. It
// takes a notification request through validation, per-recipient rate
// limiting, channel-specific message processing, gateway delivery, retry
// with exponential backoff, and delivery tracking, and exposes the outcome
// as an asynchronous handle.
//
// Basic usage:
//
//	client, err := herald.New(config.WithMaxAttempts(3))
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Shutdown(context.Background())
//
//	req, _ := herald.NewBuilder().
//		To("user-1", "Ada", herald.ChannelEmail, "ada@example.com").
//		Subject("Welcome").
//		Body("Glad to have you aboard.").
//		Build()
//
//	res, err := client.Send(context.Background(), req).Wait(context.Background())
package herald

import (
	"github.com/herald-io/herald/config"
	"github.com/herald-io/herald/pkg/herald/async"
	"github.com/herald-io/herald/pkg/herald/notification"
	"github.com/herald-io/herald/pkg/herald/orchestrator"
	"github.com/herald-io/herald/pkg/herald/result"
	"github.com/herald-io/herald/pkg/herald/tracker"
)

type (
	// Client drives notification delivery.
	Client = orchestrator.Orchestrator

	// Request is one notification request.
	Request = notification.Request

	// BulkRequest is an ordered batch of requests dispatched as one unit.
	BulkRequest = notification.BulkRequest

	// Recipient is a notification destination.
	Recipient = notification.Recipient

	// Message is the notification content.
	Message = notification.Message

	// Channel identifies a delivery medium.
	Channel = notification.Channel

	// Priority orders requests by urgency.
	Priority = notification.Priority

	// Builder constructs requests fluently.
	Builder = notification.Builder

	// Result is the outcome of one dispatch.
	Result = result.Result

	// BulkResult aggregates the outcomes of a bulk dispatch.
	BulkResult = result.BulkResult

	// Handle is the future resolved by an asynchronous dispatch.
	Handle = async.Handle

	// BatchHandle is the future resolved by a bulk dispatch.
	BatchHandle = async.BatchHandle

	// Metrics holds the aggregate delivery counters.
	Metrics = tracker.Metrics

	// Option configures a client.
	Option = config.Option
)

// Channel constants.
const (
	ChannelEmail   = notification.ChannelEmail
	ChannelSMS     = notification.ChannelSMS
	ChannelPush    = notification.ChannelPush
	ChannelWebhook = notification.ChannelWebhook
	ChannelSlack   = notification.ChannelSlack
)

// Priority constants.
const (
	PriorityCritical = notification.PriorityCritical
	PriorityUrgent   = notification.PriorityUrgent
	PriorityHigh     = notification.PriorityHigh
	PriorityNormal   = notification.PriorityNormal
	PriorityLow      = notification.PriorityLow
)

// New creates a client from the given options, backed by an in-memory
// delivery record store.
func New(opts ...Option) (*Client, error) {
	return orchestrator.New(config.New(opts...))
}

// NewWithStore creates a client persisting delivery records to the given
// store.
func NewWithStore(store tracker.Store, opts ...Option) (*Client, error) {
	return orchestrator.NewWithStore(config.New(opts...), store)
}

// NewBuilder starts a fluent request builder.
func NewBuilder() *Builder {
	return notification.NewBuilder()
}

// NewRequest creates a request with a generated id.
func NewRequest(recipient *Recipient, message *Message) *Request {
	return notification.NewRequest(recipient, message)
}

// NewBulkRequest groups requests into one bulk dispatch.
func NewBulkRequest(requests ...*Request) *BulkRequest {
	return notification.NewBulkRequest(requests...)
}
