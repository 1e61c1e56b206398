// Package idgen provides unique ID generation for notifications, bulk
// operations, and scheduled tasks.
package idgen

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Generator defines the interface for ID generation.
type Generator interface {
	// Generate creates a new unique ID.
	Generate() string
	// GenerateWithPrefix creates a new unique ID with the given prefix.
	GenerateWithPrefix(prefix string) string
}

// SequenceGenerator produces IDs from a timestamp, a process-local counter,
// and a short random suffix. IDs sort roughly by creation time.
type SequenceGenerator struct {
	counter uint64
}

// NewSequenceGenerator creates a new sequence-based ID generator.
func NewSequenceGenerator() *SequenceGenerator {
	return &SequenceGenerator{}
}

// Generate creates a new unique ID in the form timestamp_counter_random.
func (g *SequenceGenerator) Generate() string {
	return g.GenerateWithPrefix("")
}

// GenerateWithPrefix creates a new unique ID with the given prefix. The
// counter alone already guarantees process-local uniqueness; the random
// suffix guards against collisions across restarts within the same
// nanosecond.
func (g *SequenceGenerator) GenerateWithPrefix(prefix string) string {
	timestamp := time.Now().UnixNano()
	counter := atomic.AddUint64(&g.counter, 1)
	suffix := hex.EncodeToString(g.entropy(counter))

	if prefix != "" {
		return fmt.Sprintf("%s_%d_%d_%s", prefix, timestamp, counter, suffix)
	}
	return fmt.Sprintf("%d_%d_%s", timestamp, counter, suffix)
}

// entropy returns four random bytes, or the low bytes of the counter when
// the system's random source is unreadable. Uniqueness survives either way.
func (g *SequenceGenerator) entropy(counter uint64) []byte {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		binary.BigEndian.PutUint32(b, uint32(counter))
	}
	return b
}

var defaultGenerator = NewSequenceGenerator()

// NotificationID generates an ID for a notification request.
func NotificationID() string {
	return defaultGenerator.GenerateWithPrefix("ntf")
}

// MessageID generates an ID for a delivered message.
func MessageID() string {
	return defaultGenerator.GenerateWithPrefix("msg")
}

// BulkID generates a UUID-based ID for a bulk request.
func BulkID() string {
	return "bulk_" + uuid.NewString()
}

// ScheduleID generates a UUID-based ID for a scheduled task.
func ScheduleID() string {
	return "sched_" + uuid.NewString()
}
