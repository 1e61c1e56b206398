package errors

import (
	"errors"
	"fmt"
	"time"
)

// HeraldError is the unified error type carried through the delivery pipeline.
type HeraldError struct {
	Code      Code           `json:"code"`
	Message   string         `json:"message"`
	Channel   string         `json:"channel,omitempty"`
	Context   map[string]any `json:"context,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Cause     error          `json:"-"`
}

// New creates a HeraldError with the given code and message.
func New(code Code, message string) *HeraldError {
	return &HeraldError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Newf creates a HeraldError with a formatted message.
func Newf(code Code, format string, args ...any) *HeraldError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap creates a HeraldError wrapping an underlying cause.
func Wrap(code Code, message string, cause error) *HeraldError {
	e := New(code, message)
	e.Cause = cause
	return e
}

// Error implements the error interface.
func (e *HeraldError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *HeraldError) Unwrap() error {
	return e.Cause
}

// Is matches HeraldErrors by code.
func (e *HeraldError) Is(target error) bool {
	var he *HeraldError
	if errors.As(target, &he) {
		return e.Code == he.Code
	}
	return false
}

// IsRetryable reports whether this error's code is classified retryable.
func (e *HeraldError) IsRetryable() bool {
	return IsRetryable(e.Code)
}

// WithChannel tags the error with the delivery channel it occurred on.
func (e *HeraldError) WithChannel(channel string) *HeraldError {
	e.Channel = channel
	return e
}

// WithContext attaches a key-value pair to the error.
func (e *HeraldError) WithContext(key string, value any) *HeraldError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// CodeOf extracts the herald code from an error chain. Errors that are not
// HeraldErrors map to ErrInternal.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var he *HeraldError
	if errors.As(err, &he) {
		return he.Code
	}
	return ErrInternal
}
