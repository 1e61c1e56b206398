// Package validation implements the pre-send checks applied before any
// gateway call: recipient format rules, option constraints, and structural
// request validation. All checks are pure functions.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/herald-io/herald/pkg/herald/notification"
)

var (
	// RFC-lite: local@domain.tld without the full RFC 5322 grammar.
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	// E.164-like: optional leading +, 2-15 digits, first digit non-zero.
	phonePattern = regexp.MustCompile(`^\+?[1-9][0-9]{1,14}$`)
)

// ValidEmailAddress reports whether the address matches the RFC-lite pattern.
func ValidEmailAddress(address string) bool {
	return emailPattern.MatchString(address)
}

// ValidPhoneNumber reports whether the number is E.164-like.
func ValidPhoneNumber(number string) bool {
	return phonePattern.MatchString(number)
}

// ValidDeviceToken reports whether the token is a plausible push device token.
// Tokens are opaque; only a minimum length is enforced.
func ValidDeviceToken(token string) bool {
	return len(token) >= 10 && !strings.ContainsAny(token, " \t\n")
}

// ValidWebhookURL reports whether the URL carries an http or https scheme.
func ValidWebhookURL(url string) bool {
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}

// ValidSlackHandle reports whether the handle names a channel (#) or user (@).
func ValidSlackHandle(handle string) bool {
	return len(handle) > 1 && (handle[0] == '#' || handle[0] == '@')
}

// ValidateRecipient checks the recipient's contact info against the format
// rule of its channel.
func ValidateRecipient(r *notification.Recipient) error {
	if r == nil {
		return fmt.Errorf("recipient is nil")
	}
	if !r.Channel.IsValid() {
		return fmt.Errorf("unknown channel %q", r.Channel)
	}
	if r.ContactInfo == "" {
		return fmt.Errorf("recipient contact info is empty")
	}

	ok := false
	switch r.Channel {
	case notification.ChannelEmail:
		ok = ValidEmailAddress(r.ContactInfo)
	case notification.ChannelSMS:
		ok = ValidPhoneNumber(r.ContactInfo)
	case notification.ChannelPush:
		ok = ValidDeviceToken(r.ContactInfo)
	case notification.ChannelWebhook:
		ok = ValidWebhookURL(r.ContactInfo)
	case notification.ChannelSlack:
		ok = ValidSlackHandle(r.ContactInfo)
	}
	if !ok {
		return fmt.Errorf("invalid %s contact info %q", r.Channel, r.ContactInfo)
	}
	return nil
}
