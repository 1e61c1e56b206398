package validation

import (
	"fmt"
	"time"

	"github.com/herald-io/herald/pkg/herald/notification"
)

// ValidateOptions checks the typed constraints of the known option keys for
// the given channel. Unknown keys are carried through untouched.
func ValidateOptions(channel notification.Channel, opts notification.Options) error {
	if len(opts) == 0 {
		return nil
	}

	switch channel {
	case notification.ChannelEmail:
		if opts.Has(notification.OptReplyTo) {
			if !ValidEmailAddress(opts.String(notification.OptReplyTo)) {
				return fmt.Errorf("reply_to is not a valid email address")
			}
		}
		if opts.Has(notification.OptHTMLContent) {
			if _, ok := opts[notification.OptHTMLContent].(string); !ok {
				return fmt.Errorf("html_content must be a string")
			}
		}
	case notification.ChannelSMS:
		if opts.Has(notification.OptUnicodeEnabled) {
			if _, ok := opts[notification.OptUnicodeEnabled].(bool); !ok {
				return fmt.Errorf("unicode_enabled must be a boolean")
			}
		}
		if opts.Has(notification.OptValidityPeriodHours) {
			hours := opts.Int(notification.OptValidityPeriodHours)
			if hours < 1 || hours > 720 {
				return fmt.Errorf("validity_period_hours must be between 1 and 720")
			}
		}
	case notification.ChannelPush:
		if opts.Has(notification.OptBadgeCount) {
			if opts.Int(notification.OptBadgeCount) < 0 {
				return fmt.Errorf("badge_count must not be negative")
			}
		}
		if opts.Has(notification.OptCustomData) {
			if _, ok := opts[notification.OptCustomData].(map[string]any); !ok {
				return fmt.Errorf("custom_data must be an object")
			}
		}
	}
	return nil
}

// ValidateRequest runs every pre-send check: structure, scheduled time,
// channel recipient format, and channel options. A nil error means the
// request may proceed to admission control.
func ValidateRequest(req *notification.Request, now time.Time) error {
	if req == nil {
		return fmt.Errorf("request is nil")
	}
	if req.ID == "" {
		return fmt.Errorf("request id is empty")
	}
	if req.Message == nil || req.Message.Body == "" {
		return fmt.Errorf("message body is empty")
	}
	if req.ScheduledAt != nil && req.ScheduledAt.Before(now) {
		return fmt.Errorf("scheduled time %s is in the past", req.ScheduledAt.Format(time.RFC3339))
	}
	if err := ValidateRecipient(req.Recipient); err != nil {
		return err
	}
	return ValidateOptions(req.Recipient.Channel, req.Options)
}
