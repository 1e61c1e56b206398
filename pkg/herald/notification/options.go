package notification

// Option keys recognized by the channel pipelines and gateways. Unknown keys
// are carried through untouched so gateways can consume custom settings.
const (
	// Cross-channel options.
	OptDeliveryConfirmation = "delivery_confirmation"

	// Email options.
	OptReplyTo     = "reply_to"
	OptHTMLContent = "html_content"
	OptTemplate    = "template"
	OptAttachments = "attachments"

	// SMS options.
	OptUnicodeEnabled      = "unicode_enabled"
	OptValidityPeriodHours = "validity_period_hours"

	// Push options.
	OptBadgeCount = "badge_count"
	OptSound      = "sound"
	OptCustomData = "custom_data"
)

// Options holds channel-specific configuration knobs for a single request.
type Options map[string]any

// Bool returns the boolean value for key, or false when absent or mistyped.
func (o Options) Bool(key string) bool {
	v, ok := o[key].(bool)
	return ok && v
}

// String returns the string value for key, or "" when absent or mistyped.
func (o Options) String(key string) string {
	v, _ := o[key].(string)
	return v
}

// Int returns the integer value for key, or 0 when absent or mistyped.
// JSON-decoded float64 values are accepted.
func (o Options) Int(key string) int {
	switch v := o[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// Has reports whether the key is present.
func (o Options) Has(key string) bool {
	_, ok := o[key]
	return ok
}

// Clone returns a shallow copy of the options map.
func (o Options) Clone() Options {
	if o == nil {
		return nil
	}
	clone := make(Options, len(o))
	for k, v := range o {
		clone[k] = v
	}
	return clone
}
