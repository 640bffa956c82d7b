// ABOUTME: Snapshot persistence boundary for the version-control engine
// ABOUTME: Whole-state save/load behind an injectable store interface

package persist

import (
	"encoding/json"
	"time"
)

// Entry is one persisted (id, value) pair within a snapshot collection
type Entry struct {
	ID    string          `json:"id"`
	Value json.RawMessage `json:"value"`
}

// Snapshot is the full serialized engine state: three collections, each a list
// of (id, value) pairs. Timestamps inside the values serialize as RFC3339
// strings via time.Time JSON encoding and parse back into timestamps on load.
type Snapshot struct {
	Versions      []Entry   `json:"versions"`
	Branches      []Entry   `json:"branches"`
	MergeRequests []Entry   `json:"mergeRequests"`
	SavedAt       time.Time `json:"savedAt"`
}

// Store persists engine snapshots. Save failures are treated as warnings by
// the engine: logged and counted, never rolled back.
type Store interface {
	// Save persists the snapshot, replacing any previous one
	Save(snap *Snapshot) error

	// Load returns the last saved snapshot, or (nil, nil) when none exists
	Load() (*Snapshot, error)
}

// AppendEntry marshals value and appends it to a collection
func AppendEntry(entries []Entry, id string, value any) ([]Entry, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return entries, err
	}
	return append(entries, Entry{ID: id, Value: raw}), nil
}
