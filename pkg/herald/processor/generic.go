package processor

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	scriptTagPattern = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)
	eventAttrPattern = regexp.MustCompile(`(?i)\s*on\w+\s*=\s*("[^"]*"|'[^']*')`)
	jsProtoPattern   = regexp.MustCompile(`(?i)javascript\s*:`)
	spaceRunPattern  = regexp.MustCompile(`[ \t]+`)
	blankRunPattern  = regexp.MustCompile(`\n{3,}`)
)

// applyGenericStage runs the channel-independent transformations: content
// sanitation, whitespace normalization, and metadata collection.
func applyGenericStage(pm *ProcessedMessage) {
	pm.Body = sanitizeContent(pm.Body)
	pm.Subject = sanitizeContent(pm.Subject)
	pm.AddStep("sanitize", "stripped script fragments and event handlers", true)

	pm.Body = normalizeWhitespace(pm.Body)
	pm.Subject = strings.TrimSpace(spaceRunPattern.ReplaceAllString(pm.Subject, " "))
	pm.AddStep("normalize_whitespace", "collapsed runs of spaces and blank lines", true)

	collectContentMetadata(pm)
	pm.AddStep("collect_metadata", "recorded character, word, and line counts", true)
}

// sanitizeContent removes script-like fragments from message content.
func sanitizeContent(s string) string {
	s = scriptTagPattern.ReplaceAllString(s, "")
	s = eventAttrPattern.ReplaceAllString(s, "")
	s = jsProtoPattern.ReplaceAllString(s, "")
	return s
}

// normalizeWhitespace collapses runs of spaces and tabs, trims line ends, and
// limits consecutive blank lines. Newlines are preserved; push and SMS stages
// apply their own tighter rules.
func normalizeWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(spaceRunPattern.ReplaceAllString(line, " "), " ")
	}
	s = strings.Join(lines, "\n")
	s = blankRunPattern.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

func collectContentMetadata(pm *ProcessedMessage) {
	body := pm.Body
	pm.SetMetadata("char_count", len([]rune(body)))
	pm.SetMetadata("word_count", len(strings.Fields(body)))
	lineCount := 0
	if body != "" {
		lineCount = strings.Count(body, "\n") + 1
	}
	pm.SetMetadata("line_count", lineCount)
}

// firstRunes returns the first n runes of s. Length budgets count characters,
// so cutting by byte index would split multi-byte runes.
func firstRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	seen := 0
	for i := range s {
		if seen == n {
			return s[:i]
		}
		seen++
	}
	return s
}

// clipToBytes returns the longest prefix of s no larger than n bytes that
// still ends on a rune boundary.
func clipToBytes(s string, n int) string {
	if n >= len(s) {
		return s
	}
	if n < 0 {
		n = 0
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
