// Package state provides the persistence port for reading state. The
// reader mirrors its position into a Store after every qualifying change
// and reads it back once at startup; the in-memory session stays the
// source of truth throughout.
package state

import "encoding/json"

// SnapshotKey is the logical key the reader state lives under.
const SnapshotKey = "bibleReaderState"

// Store is a durable key-value port. Implementations must return nil (not
// an error) for a missing key.
type Store interface {
	// Get retrieves a value by key. Returns nil if not found.
	Get(key string) ([]byte, error)
	// Put stores a value by key, overwriting if it exists.
	Put(key string, value []byte) error
	// Delete removes a value by key.
	Delete(key string) error
	// Close releases resources.
	Close() error
}

// Position is a persisted (book, chapter) pair.
type Position struct {
	BookAbbrev string `json:"bookAbbrev"`
	Chapter    int    `json:"chapter"`
}

// Snapshot is the serialized reading state written across sessions.
type Snapshot struct {
	BookAbbrev        string   `json:"bookAbbrev"`
	Chapter           int      `json:"chapter"`
	Translation       string   `json:"translation"`
	PrimaryReading    Position `json:"primaryReading"`
	IsViewingCrossRef bool     `json:"isViewingCrossRef"`
	SelectedVerse     int      `json:"selectedVerse,omitempty"`
	ScrollOffset      int      `json:"scrollOffset,omitempty"`
}

// SaveSnapshot writes the snapshot under SnapshotKey.
func SaveSnapshot(s Store, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.Put(SnapshotKey, data)
}

// LoadSnapshot reads the snapshot back. Returns nil when no state has been
// saved yet or the stored document does not parse; a fresh session starts
// from defaults either way.
func LoadSnapshot(s Store) (*Snapshot, error) {
	data, err := s.Get(SnapshotKey)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, nil
	}
	if snap.BookAbbrev == "" {
		return nil, nil
	}
	return &snap, nil
}
