// Package processor implements the message transformation pipelines that
// prepare notification content for channel delivery. A pipeline is pure and
// synchronous: the same request and configuration always produce the same
// ProcessedMessage, and reprocessing an already-processed body is a no-op.
package processor

import (
	"fmt"

	"github.com/herald-io/herald/pkg/herald/notification"
	"github.com/herald-io/herald/pkg/herald/template"
)

// Step records one transformation applied to a message.
type Step struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Success     bool   `json:"success"`
}

// ProcessedMessage is the transient, channel-ready form of a notification.
// It is discarded after delivery.
type ProcessedMessage struct {
	RequestID string               `json:"request_id"`
	Channel   notification.Channel `json:"channel"`
	Subject   string               `json:"subject,omitempty"`
	Body      string               `json:"body"`
	Steps     []Step               `json:"steps"`
	Metadata  map[string]any       `json:"metadata,omitempty"`
}

// AddStep appends a transformation log entry.
func (p *ProcessedMessage) AddStep(name, description string, success bool) {
	p.Steps = append(p.Steps, Step{Name: name, Description: description, Success: success})
}

// SetMetadata attaches a metadata value collected during processing.
func (p *ProcessedMessage) SetMetadata(key string, value any) {
	if p.Metadata == nil {
		p.Metadata = make(map[string]any)
	}
	p.Metadata[key] = value
}

// Config holds the tunables of the channel pipelines.
type Config struct {
	// SMSMaxLength is the single-message budget for SMS bodies.
	SMSMaxLength int
	// SMSOptOutSuffix is appended to SMS bodies when it fits the budget.
	SMSOptOutSuffix string
	// PushPreviewLength is the soft body limit for mobile previews.
	PushPreviewLength int
	// PushMaxPayload is the total payload budget in bytes.
	PushMaxPayload int
	// PushPayloadOverhead estimates the fixed metadata share of the payload.
	PushPayloadOverhead int
	// Templates resolves named email templates.
	Templates *template.Registry
}

// DefaultConfig returns the default pipeline configuration.
func DefaultConfig() *Config {
	return &Config{
		SMSMaxLength:        160,
		SMSOptOutSuffix:     "Reply STOP to opt out.",
		PushPreviewLength:   100,
		PushMaxPayload:      4096,
		PushPayloadOverhead: 256,
		Templates:           template.NewRegistry(),
	}
}

// Pipeline transforms requests into channel-ready messages.
type Pipeline struct {
	config *Config
}

// NewPipeline creates a pipeline with the given configuration. A nil config
// uses defaults.
func NewPipeline(config *Config) *Pipeline {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Templates == nil {
		config.Templates = template.NewRegistry()
	}
	return &Pipeline{config: config}
}

// Process runs the generic stage followed by the channel-specific stages.
func (p *Pipeline) Process(req *notification.Request) (*ProcessedMessage, error) {
	if req == nil || req.Recipient == nil || req.Message == nil {
		return nil, fmt.Errorf("processor: incomplete request")
	}

	pm := &ProcessedMessage{
		RequestID: req.ID,
		Channel:   req.Recipient.Channel,
		Subject:   req.Message.Subject,
		Body:      req.Message.Body,
	}
	pm.SetMetadata("original_length", len(req.Message.Body))

	applyGenericStage(pm)

	var err error
	switch req.Recipient.Channel {
	case notification.ChannelSMS:
		err = p.applySMSStage(pm, req.Options)
	case notification.ChannelPush:
		err = p.applyPushStage(pm, req.Options)
	case notification.ChannelEmail:
		err = p.applyEmailStage(pm, req.Options)
	case notification.ChannelWebhook, notification.ChannelSlack:
		// Generic sanitation only; payload assembly happens in the gateway.
	default:
		err = fmt.Errorf("processor: unsupported channel %q", req.Recipient.Channel)
	}
	if err != nil {
		return nil, err
	}

	pm.SetMetadata("processed_length", len(pm.Body))
	return pm, nil
}
