package idgen

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequenceGenerator_Unique(t *testing.T) {
	g := NewSequenceGenerator()

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := g.Generate()
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestSequenceGenerator_Prefix(t *testing.T) {
	g := NewSequenceGenerator()
	assert.True(t, strings.HasPrefix(g.GenerateWithPrefix("req"), "req_"))
}

func TestSequenceGenerator_Concurrent(t *testing.T) {
	g := NewSequenceGenerator()

	var mu sync.Mutex
	seen := make(map[string]bool)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				id := g.Generate()
				mu.Lock()
				assert.False(t, seen[id])
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
}

func TestWellKnownPrefixes(t *testing.T) {
	assert.True(t, strings.HasPrefix(NotificationID(), "ntf_"))
	assert.True(t, strings.HasPrefix(MessageID(), "msg_"))
	assert.True(t, strings.HasPrefix(BulkID(), "bulk_"))
	assert.True(t, strings.HasPrefix(ScheduleID(), "sched_"))
}
