// Package storage persists small documents as JSON files on local disk.
package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// JSONStore reads and atomically rewrites one JSON file.
type JSONStore struct {
	mu       sync.Mutex
	filePath string
}

// NewJSONStore creates the data directory if needed. The file itself is
// created on the first Save.
func NewJSONStore(dataDir, filename string) (*JSONStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	return &JSONStore{filePath: filepath.Join(dataDir, filename)}, nil
}

// Load decodes the file into data. A missing file leaves data untouched.
func (s *JSONStore) Load(data interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(data)
}

// Save replaces the file contents with data.
func (s *JSONStore) Save(data interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(data)
}

// Update loads into data, applies fn and saves the result, all under one lock.
// Nothing is written when fn returns an error.
func (s *JSONStore) Update(data interface{}, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(data); err != nil {
		return err
	}
	if err := fn(); err != nil {
		return err
	}
	return s.save(data)
}

func (s *JSONStore) load(data interface{}) error {
	file, err := os.Open(s.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	defer file.Close()

	return json.NewDecoder(file).Decode(data)
}

func (s *JSONStore) save(data interface{}) error {
	tempFile := s.filePath + ".tmp"
	file, err := os.Create(tempFile)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		file.Close()
		os.Remove(tempFile)
		return err
	}

	if err := file.Close(); err != nil {
		os.Remove(tempFile)
		return err
	}

	return os.Rename(tempFile, s.filePath)
}
