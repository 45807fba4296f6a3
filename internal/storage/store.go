package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Store is a string key/value file, rewritten on every Set.
type Store struct {
	mu     sync.Mutex
	path   string
	values map[string]string
}

// OpenStore opens the progress store in the user config directory.
func OpenStore(appName string) (*Store, error) {
	path, err := resolveConfigPath(appName, progressFileName)
	if err != nil {
		return NewStore(""), err
	}
	return LoadStore(path)
}

// NewStore creates an empty store backed by path. An empty path keeps values in memory only.
func NewStore(path string) *Store {
	return &Store{path: path, values: make(map[string]string)}
}

// LoadStore reads the store at path. A missing file yields an empty store.
func LoadStore(path string) (*Store, error) {
	store := NewStore(path)
	rawData, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return store, nil
		}
		return store, fmt.Errorf("read store file: %w", err)
	}

	values := make(map[string]string)
	if err := yaml.Unmarshal(rawData, &values); err != nil {
		return store, fmt.Errorf("parse store yaml: %w", err)
	}
	if values == nil {
		// A null document decodes to a nil map.
		values = make(map[string]string)
	}
	store.values = values
	return store, nil
}

// Path returns the backing file path.
func (store *Store) Path() string {
	return store.path
}

// Get returns the value stored under key.
func (store *Store) Get(key string) (string, bool) {
	store.mu.Lock()
	defer store.mu.Unlock()
	value, ok := store.values[key]
	return value, ok
}

// Set stores value under key and writes the file.
// The in-memory value is kept even when the write fails.
func (store *Store) Set(key, value string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.values[key] = value
	return store.flushLocked()
}

func (store *Store) flushLocked() error {
	if store.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(store.path), 0o755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}

	serialized, err := yaml.Marshal(store.values)
	if err != nil {
		return fmt.Errorf("marshal store yaml: %w", err)
	}
	if err := os.WriteFile(store.path, serialized, 0o644); err != nil {
		return fmt.Errorf("write store file: %w", err)
	}
	return nil
}
