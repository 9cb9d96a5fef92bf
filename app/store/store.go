// Package store is the durable keyed record store behind the session
// service: one JSON file mapping user id to serialized state.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFile(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	return &FileStore{path: path}, nil
}

// Load reads every record. A missing file is an empty store, not an
// error.
func (s *FileStore) Load() (map[int64]json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[int64]json.RawMessage{}, nil
		}
		return nil, fmt.Errorf("failed to read store file: %w", err)
	}

	var byKey map[string]json.RawMessage
	if err = json.Unmarshal(data, &byKey); err != nil {
		return nil, fmt.Errorf("failed to parse store file: %w", err)
	}

	result := make(map[int64]json.RawMessage, len(byKey))
	for key, record := range byKey {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid store key %q: %w", key, err)
		}
		result[id] = record
	}

	return result, nil
}

// Save replaces the whole file with the given records.
func (s *FileStore) Save(records map[int64]json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byKey := make(map[string]json.RawMessage, len(records))
	for id, record := range records {
		byKey[strconv.FormatInt(id, 10)] = record
	}

	data, err := json.MarshalIndent(byKey, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}

	if err = os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write store file: %w", err)
	}

	return nil
}
