package result

// DeliveryStatus is the per-request lifecycle state tracked by the delivery
// tracker. Each in-flight request carries its own status keyed by request ID;
// there is no shared orchestrator-level state.
type DeliveryStatus string

const (
	StatusPending        DeliveryStatus = "pending"
	StatusProcessing     DeliveryStatus = "processing"
	StatusDelivered      DeliveryStatus = "delivered"
	StatusRetryScheduled DeliveryStatus = "retry_scheduled"
	StatusFailed         DeliveryStatus = "failed"
	StatusUnknown        DeliveryStatus = "unknown"
)

// Terminal reports whether the status is a final state.
func (s DeliveryStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusFailed
}

// String returns the status name.
func (s DeliveryStatus) String() string {
	return string(s)
}
