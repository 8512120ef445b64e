package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Store persists named JSON documents under a data directory. The directory
// is created lazily on first write. Single-writer assumption, no locking.
type Store struct {
	dir string
}

// New creates a blob store rooted at dir.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// DefaultDir returns the standard data directory under the user's home.
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "werkday"), nil
}

// Dir returns the store's root directory.
func (s *Store) Dir() string {
	return s.dir
}

// Read unmarshals the blob named key into out. If the blob is absent or
// cannot be parsed, out is left untouched so the caller's default survives,
// and the returned bool is false.
func (s *Store) Read(key string, out any) (bool, error) {
	path := s.path(key)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read blob %s: %w", key, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		// Corrupt blob degrades to the default value.
		return false, nil
	}

	return true, nil
}

// Write fully replaces the blob named key with value.
func (s *Store) Write(key string, value any) error {
	if err := os.MkdirAll(filepath.Dir(s.path(key)), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal blob %s: %w", key, err)
	}

	if err := os.WriteFile(s.path(key), data, 0600); err != nil {
		return fmt.Errorf("failed to write blob %s: %w", key, err)
	}

	return nil
}

// Delete removes the blob named key. Missing blobs are not an error.
func (s *Store) Delete(key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete blob %s: %w", key, err)
	}
	return nil
}

// Keys lists blob names under the given subdirectory, without the .json
// extension. An absent subdirectory yields an empty list.
func (s *Store) Keys(subdir string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.dir, subdir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list blobs in %s: %w", subdir, err)
	}

	var keys []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if filepath.Ext(name) != ".json" {
			continue
		}
		keys = append(keys, name[:len(name)-len(".json")])
	}
	return keys, nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}
