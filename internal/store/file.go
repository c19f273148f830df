package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps all values in one JSON object on disk.
type FileStore struct {
	mutex sync.RWMutex
	path  string
}

func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	return &FileStore{path: path}, nil
}

func (s *FileStore) load() (map[string]string, error) {
	values := map[string]string{}

	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}
	if len(b) == 0 {
		return values, nil
	}

	if err := json.Unmarshal(b, &values); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", s.path, err)
	}

	return values, nil
}

func (s *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	values, err := s.load()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]

	return v, ok, nil
}

func (s *FileStore) Set(_ context.Context, key, value string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	values, err := s.load()
	if err != nil {
		return err
	}
	values[key] = value

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}

	// Write to a sibling file first so a crash never leaves half a document.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}

	return os.Rename(tmp, s.path)
}

func (s *FileStore) Close() error {
	return nil
}
