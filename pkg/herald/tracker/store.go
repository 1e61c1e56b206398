package tracker

import (
	"context"
	"fmt"
	"sync"
)

// Store persists delivery records. The tracker writes through on every
// update; Load serves recovery and inspection paths.
type Store interface {
	Save(ctx context.Context, record *DeliveryRecord) error
	Load(ctx context.Context, requestID string) (*DeliveryRecord, error)
	Ping(ctx context.Context) error
}

// ErrRecordNotFound is returned by Load for unknown request IDs.
var ErrRecordNotFound = fmt.Errorf("tracker: delivery record not found")

// MemoryStore keeps records in a mutex-protected map. The default store.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*DeliveryRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*DeliveryRecord)}
}

// Save stores a copy of the record.
func (s *MemoryStore) Save(_ context.Context, record *DeliveryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *record
	clone.Attempts = append([]AttemptRecord(nil), record.Attempts...)
	s.records[record.RequestID] = &clone
	return nil
}

// Load returns a copy of the stored record.
func (s *MemoryStore) Load(_ context.Context, requestID string) (*DeliveryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[requestID]
	if !ok {
		return nil, ErrRecordNotFound
	}
	clone := *record
	clone.Attempts = append([]AttemptRecord(nil), record.Attempts...)
	return &clone, nil
}

// Ping always succeeds for the memory store.
func (s *MemoryStore) Ping(context.Context) error {
	return nil
}
