// ABOUTME: File-backed snapshot store with atomic replacement
// ABOUTME: Serializes the snapshot as a single JSON document

package persist

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore persists snapshots as one JSON file, replaced atomically
type FileStore struct {
	Path string
}

// NewFileStore creates a file-backed snapshot store
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Save writes the snapshot to a temp file and renames it into place
func (fs *FileStore) Save(snap *Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("persist: encode snapshot: %w", err)
	}

	dir := filepath.Dir(fs.Path)
	tmp, err := os.CreateTemp(dir, ".draftstore-*.tmp")
	if err != nil {
		return fmt.Errorf("persist: create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("persist: write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("persist: close temp file: %w", err)
	}

	if err := os.Rename(tmpName, fs.Path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("persist: replace snapshot: %w", err)
	}

	return nil
}

// Load reads the snapshot file; a missing file is not an error
func (fs *FileStore) Load() (*Snapshot, error) {
	data, err := os.ReadFile(fs.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("persist: read snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("persist: decode snapshot: %w", err)
	}

	return &snap, nil
}
