// Package notification defines the request-side data model: recipients,
// message content, per-channel options, and single/bulk notification requests.
package notification

// Channel identifies a delivery medium.
type Channel string

const (
	ChannelEmail   Channel = "email"
	ChannelSMS     Channel = "sms"
	ChannelPush    Channel = "push"
	ChannelWebhook Channel = "webhook"
	ChannelSlack   Channel = "slack"
)

// String returns the channel name.
func (c Channel) String() string {
	return string(c)
}

// IsValid reports whether the channel is a known delivery medium.
func (c Channel) IsValid() bool {
	switch c {
	case ChannelEmail, ChannelSMS, ChannelPush, ChannelWebhook, ChannelSlack:
		return true
	default:
		return false
	}
}

// Channels returns all supported channels.
func Channels() []Channel {
	return []Channel{ChannelEmail, ChannelSMS, ChannelPush, ChannelWebhook, ChannelSlack}
}
