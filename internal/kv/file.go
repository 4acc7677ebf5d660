package kv

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore implements Store on the local filesystem, one file per key under
// a base directory. This is the durable implementation for a desktop or
// embedded client session.
type FileStore struct {
	basePath string
}

// NewFileStore creates a file-backed store rooted at basePath (created if it
// doesn't exist).
func NewFileStore(basePath string) (*FileStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	return &FileStore{basePath: basePath}, nil
}

// Get reads the value for key. An absent file is not an error.
func (s *FileStore) Get(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read key %q: %w", key, err)
	}

	return data, true, nil
}

// Put writes the value for key atomically (write to temp file, then rename).
func (s *FileStore) Put(key string, value []byte) error {
	path := s.path(key)

	tmp, err := os.CreateTemp(s.basePath, "."+sanitize(key)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace key %q: %w", key, err)
	}

	return nil
}

// Delete removes the value for key. Deleting an absent key is a no-op.
func (s *FileStore) Delete(key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete key %q: %w", key, err)
	}

	return nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.basePath, sanitize(key)+".json")
}

// sanitize keeps keys usable as file names.
func sanitize(key string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, key)
}
