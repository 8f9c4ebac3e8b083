// Package history persists the per-run session history for crash forensics.
// The file store overwrites one JSON document after every iteration; the log
// is never reloaded on restart. Durability is advisory: the engine swallows
// store errors and a failed save never affects the run.
package history

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/appwright/appwright/core"
)

// DefaultFileName is the per-process history log written next to the binary
// unless configured otherwise.
const DefaultFileName = "appwright_build_log.json"

// FileStore writes the full history document to a single file, replacing any
// previous snapshot.
type FileStore struct {
	path string
}

// NewFileStore creates a store writing to path (DefaultFileName if empty).
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultFileName
	}
	return &FileStore{path: path}
}

// Path returns the target file path.
func (s *FileStore) Path() string { return s.path }

// Save serializes the history with indentation and overwrites the log file.
func (s *FileStore) Save(h *core.SessionHistory) error {
	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}

// MemoryStore retains the latest snapshot in memory. Used in tests and as a
// no-disk default.
type MemoryStore struct {
	mu    sync.Mutex
	last  *core.SessionHistory
	saves int
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

// Save retains a deep copy of the snapshot so later engine mutations are not
// visible through Last.
func (s *MemoryStore) Save(h *core.SessionHistory) error {
	data, err := json.Marshal(h)
	if err != nil {
		return err
	}
	var clone core.SessionHistory
	if err := json.Unmarshal(data, &clone); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = &clone
	s.saves++
	return nil
}

// Last returns the most recently saved snapshot, or nil.
func (s *MemoryStore) Last() *core.SessionHistory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Saves returns how many times Save succeeded.
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
