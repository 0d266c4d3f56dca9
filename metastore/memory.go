// Package metastore provides session metadata stores.
//
// The pipeline writes a SessionRecord at each state change. Memory keeps
// records in process for tests and short-lived tools; Dir persists one JSON
// document per session so records survive restarts.
package metastore

import (
	"context"
	"sync"

	"github.com/objstream/transfer/errors"
	"github.com/objstream/transfer/transfertypes"
)

// Memory is an in-process session store.
type Memory struct {
	mu      sync.RWMutex
	records map[string]transfertypes.SessionRecord
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		records: make(map[string]transfertypes.SessionRecord),
	}
}

// Put stores or replaces the record for a session.
func (m *Memory) Put(_ context.Context, record transfertypes.SessionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[record.ID] = record
	return nil
}

// Get retrieves the record for a session.
func (m *Memory) Get(_ context.Context, id string) (transfertypes.SessionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.records[id]
	if !ok {
		return transfertypes.SessionRecord{}, errors.NewError("get", errors.ErrSessionNotFound).
			WithMessage(id)
	}
	return record, nil
}

// Delete removes the record for a session. Deleting a missing record is not
// an error.
func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, id)
	return nil
}

// List returns all stored records in unspecified order.
func (m *Memory) List(_ context.Context) ([]transfertypes.SessionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]transfertypes.SessionRecord, 0, len(m.records))
	for _, record := range m.records {
		out = append(out, record)
	}
	return out, nil
}
