// Package errors defines the error taxonomy shared by all herald components.
// Every failure that crosses the orchestrator boundary carries one of these
// codes; the retry manager uses the registry to decide whether a failed
// delivery may be attempted again.
package errors

// Code identifies a failure class.
type Code string

// Validation and admission errors. Never retried.
const (
	// ErrValidation covers malformed recipients, messages, options, and
	// scheduled times in the past.
	ErrValidation Code = "VALIDATION_ERROR"
	// ErrRateLimitExceeded is returned when the per-recipient window is full.
	// The retry manager never auto-retries it; callers may try again later.
	ErrRateLimitExceeded Code = "RATE_LIMIT_EXCEEDED"
	// ErrProcessing indicates a message pipeline failure.
	ErrProcessing Code = "PROCESSING_ERROR"
)

// Delivery errors reported by channel gateways.
const (
	// ErrConnection is a transport-level failure, including gateway timeouts.
	ErrConnection Code = "CONNECTION_ERROR"
	// ErrGateway is a transient failure inside the gateway itself.
	ErrGateway Code = "GATEWAY_ERROR"
	// ErrService is a transient failure of the downstream delivery service.
	ErrService Code = "SERVICE_ERROR"
	// ErrInvalidToken means the recipient token or address was rejected
	// permanently by the gateway.
	ErrInvalidToken Code = "INVALID_TOKEN"
	// ErrPayloadTooLarge means the prepared message exceeds the channel limit.
	ErrPayloadTooLarge Code = "PAYLOAD_TOO_LARGE"
)

// Orchestration errors.
const (
	// ErrRetryExhausted is the terminal code once the attempt budget is spent.
	ErrRetryExhausted Code = "RETRY_EXHAUSTED"
	// ErrSchedule covers invalid or unknown scheduled tasks.
	ErrSchedule Code = "SCHEDULE_ERROR"
	// ErrInternal is the generic code for unexpected internal faults.
	ErrInternal Code = "INTERNAL_ERROR"
)

// String returns the code as a string.
func (c Code) String() string {
	return string(c)
}

// Info contains registry metadata about a code.
type Info struct {
	Code        Code   `json:"code"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Retryable   bool   `json:"retryable"`
}

// Error categories.
const (
	CategoryValidation = "validation"
	CategoryAdmission  = "admission"
	CategoryProcessing = "processing"
	CategoryDelivery   = "delivery"
	CategorySystem     = "system"
)

var registry = map[Code]Info{
	ErrValidation:        {ErrValidation, CategoryValidation, "recipient, message, or options failed validation", false},
	ErrRateLimitExceeded: {ErrRateLimitExceeded, CategoryAdmission, "per-recipient rate limit exceeded", false},
	ErrProcessing:        {ErrProcessing, CategoryProcessing, "message processing pipeline failed", false},
	ErrConnection:        {ErrConnection, CategoryDelivery, "transport connection failed or timed out", true},
	ErrGateway:           {ErrGateway, CategoryDelivery, "gateway reported a transient failure", true},
	ErrService:           {ErrService, CategoryDelivery, "delivery service temporarily unavailable", true},
	ErrInvalidToken:      {ErrInvalidToken, CategoryDelivery, "recipient token or address permanently rejected", false},
	ErrPayloadTooLarge:   {ErrPayloadTooLarge, CategoryDelivery, "prepared payload exceeds channel limit", false},
	ErrRetryExhausted:    {ErrRetryExhausted, CategorySystem, "retry attempt budget exhausted", false},
	ErrSchedule:          {ErrSchedule, CategorySystem, "scheduled task invalid, unknown, or already fired", false},
	ErrInternal:          {ErrInternal, CategorySystem, "unexpected internal error", false},
}

// GetInfo returns registry metadata for the given code. Unknown codes map to
// a non-retryable system entry.
func GetInfo(code Code) Info {
	if info, ok := registry[code]; ok {
		return info
	}
	return Info{Code: code, Category: CategorySystem, Description: "unknown error code", Retryable: false}
}

// IsRetryable reports whether failures with this code may be retried.
func IsRetryable(code Code) bool {
	return GetInfo(code).Retryable
}

// Codes returns all registered codes.
func Codes() []Code {
	codes := make([]Code, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}
