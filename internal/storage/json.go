package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"mvmtest/internal/domain"
)

// JSONStorage keeps only the last run, in a single JSON file.
type JSONStorage struct {
	path string
}

// NewJSONStorage returns a Storage backed by the file at path.
func NewJSONStorage(path string) *JSONStorage {
	return &JSONStorage{path: path}
}

// Save overwrites the results file with record.
func (s *JSONStorage) Save(record *domain.RunRecord) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	// Write beside the target and rename so a reader never sees half a file
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}

// Last reads the results file.
func (s *JSONStorage) Last() (*domain.RunRecord, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoRuns
	}
	if err != nil {
		return nil, fmt.Errorf("read results file: %w", err)
	}
	var record domain.RunRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("parse results %s: %w", s.path, err)
	}
	return &record, nil
}

func (s *JSONStorage) Close() error { return nil }
