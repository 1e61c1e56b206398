package processor

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/herald-io/herald/pkg/herald/notification"
)

// gsmReplacements maps common typographic characters to their closest
// GSM-7-safe equivalents before the non-ASCII strip.
var gsmReplacements = strings.NewReplacer(
	"‘", "'", "’", "'", // smart single quotes
	"“", `"`, "”", `"`, // smart double quotes
	"–", "-", "—", "-", // en and em dashes
	"…", "...",
	" ", " ",
)

// applySMSStage prepares a body for single-segment SMS transport: transport
// safety, whitespace, length budget, and the opt-out suffix.
func (p *Pipeline) applySMSStage(pm *ProcessedMessage, opts notification.Options) error {
	maxLength := p.config.SMSMaxLength
	if maxLength <= 4 {
		return fmt.Errorf("processor: sms max length %d is unusable", maxLength)
	}

	unicodeEnabled := opts.Bool(notification.OptUnicodeEnabled)
	if !unicodeEnabled {
		before := pm.Body
		pm.Body = stripNonASCII(gsmReplacements.Replace(pm.Body))
		pm.AddStep("sms_charset", "replaced typographic characters and stripped non-ASCII", true)
		if before != pm.Body {
			pm.SetMetadata("charset_modified", true)
		}
	} else {
		pm.AddStep("sms_charset", "unicode enabled, charset untouched", true)
	}

	pm.Body = strings.TrimSpace(spaceRunPattern.ReplaceAllString(pm.Body, " "))
	pm.AddStep("sms_whitespace", "normalized whitespace", true)

	if count := utf8.RuneCountInString(pm.Body); count > maxLength {
		pm.SetMetadata("truncated_from", count)
		pm.Body = firstRunes(pm.Body, maxLength-3) + "..."
		pm.AddStep("sms_truncate", fmt.Sprintf("truncated to %d characters", maxLength), true)
	}

	// The suffix is skipped when the body already mentions opting out, which
	// also keeps reprocessing idempotent.
	suffix := p.config.SMSOptOutSuffix
	if suffix != "" && !strings.Contains(strings.ToLower(pm.Body), "stop") {
		withSuffix := pm.Body + " " + suffix
		if utf8.RuneCountInString(withSuffix) <= maxLength {
			pm.Body = withSuffix
			pm.AddStep("sms_opt_out", "appended opt-out suffix", true)
		} else {
			pm.AddStep("sms_opt_out", "opt-out suffix does not fit the length budget", false)
		}
	}

	return nil
}

// stripNonASCII drops every rune outside the printable ASCII range, keeping
// newlines.
func stripNonASCII(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\n' || (r >= 0x20 && r < 0x7f) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
