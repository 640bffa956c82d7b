// ABOUTME: In-memory snapshot store for tests and embedders without durability
// ABOUTME: Also provides a store that always fails, for warning-path tests

package persist

import "errors"

// MemoryStore keeps the last saved snapshot in memory
type MemoryStore struct {
	snap  *Snapshot
	saves int
}

// NewMemoryStore creates an in-memory snapshot store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save replaces the held snapshot
func (ms *MemoryStore) Save(snap *Snapshot) error {
	ms.snap = snap
	ms.saves++
	return nil
}

// Load returns the held snapshot, or (nil, nil) when nothing was saved
func (ms *MemoryStore) Load() (*Snapshot, error) {
	return ms.snap, nil
}

// Saves returns the number of completed saves
func (ms *MemoryStore) Saves() int {
	return ms.saves
}

// ErrSaveFailed is returned by FailingStore on every save
var ErrSaveFailed = errors.New("persist: save failed")

// FailingStore fails every save. Engines must keep operating in memory when
// persistence fails, and tests use this store to prove it.
type FailingStore struct{}

// Save always fails
func (FailingStore) Save(*Snapshot) error { return ErrSaveFailed }

// Load never finds a snapshot
func (FailingStore) Load() (*Snapshot, error) { return nil, nil }
