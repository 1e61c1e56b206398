package processor

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/herald-io/herald/pkg/herald/notification"
)

var whitespaceRunPattern = regexp.MustCompile(`\s+`)

// sentenceEnd marks characters treated as sentence breaks for preview cuts.
const sentenceEnd = ".!?"

// applyPushStage optimizes a body for mobile notification previews and
// enforces the total payload budget.
func (p *Pipeline) applyPushStage(pm *ProcessedMessage, opts notification.Options) error {
	pm.Body = strings.TrimSpace(whitespaceRunPattern.ReplaceAllString(pm.Body, " "))
	pm.AddStep("push_whitespace", "collapsed all whitespace runs", true)

	preview := p.config.PushPreviewLength
	if count := utf8.RuneCountInString(pm.Body); preview > 3 && count > preview {
		pm.SetMetadata("preview_truncated_from", count)
		if cut := wellPlacedBreak(pm.Body, preview); cut > 0 {
			pm.Body = pm.Body[:cut]
			pm.AddStep("push_preview", "cut at sentence break for mobile preview", true)
		} else {
			pm.Body = firstRunes(pm.Body, preview-3) + "..."
			pm.AddStep("push_preview", fmt.Sprintf("truncated to %d characters for mobile preview", preview-3), true)
		}
	}

	// Estimate the full payload: title, body, and the fixed metadata overhead
	// of the push envelope. Trim the body further if the estimate overflows.
	maxPayload := p.config.PushMaxPayload
	overhead := p.config.PushPayloadOverhead
	estimate := len(pm.Subject) + len(pm.Body) + overhead
	pm.SetMetadata("payload_estimate", estimate)

	if maxPayload > 0 && estimate > maxPayload {
		budget := maxPayload - overhead - len(pm.Subject) - 3
		if budget < 0 {
			return fmt.Errorf("processor: push payload budget %d cannot fit title and overhead", maxPayload)
		}
		pm.Body = clipToBytes(pm.Body, budget) + "..."
		pm.SetMetadata("payload_estimate", len(pm.Subject)+len(pm.Body)+overhead)
		pm.AddStep("push_payload", fmt.Sprintf("trimmed body to fit %d byte payload", maxPayload), true)
	}

	if badge := opts.Int(notification.OptBadgeCount); badge > 0 {
		pm.SetMetadata("badge_count", badge)
	}
	if sound := opts.String(notification.OptSound); sound != "" {
		pm.SetMetadata("sound", sound)
	}
	if data, ok := opts[notification.OptCustomData].(map[string]any); ok {
		pm.SetMetadata("custom_data", data)
	}

	return nil
}

// wellPlacedBreak returns the byte offset just past a sentence break that
// falls in the back part of the preview window, or 0 when no such break
// exists. The window spans preview runes; sentence-end marks are single-byte,
// so the returned offset is always a rune boundary.
func wellPlacedBreak(body string, preview int) int {
	window := firstRunes(body, preview)
	idx := strings.LastIndexAny(window, sentenceEnd)
	if idx < 0 {
		return 0
	}
	if utf8.RuneCountInString(window[:idx]) >= preview*6/10 {
		return idx + 1
	}
	return 0
}
