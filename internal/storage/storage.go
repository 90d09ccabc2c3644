// Package storage keeps the result of the last run so that later commands can
// re-run its failures or browse them.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"mvmtest/internal/config"
	"mvmtest/internal/domain"
)

// ErrNoRuns is returned by Last when nothing has been stored yet.
var ErrNoRuns = errors.New("no stored run")

// Storage persists and loads run records.
type Storage interface {
	// Save stores record, replacing any stored record with the same ID.
	Save(record *domain.RunRecord) error
	// Last returns the most recently started run.
	Last() (*domain.RunRecord, error)
	Close() error
}

// Open returns the backend selected by cfg.Store.
func Open(cfg config.Config) (Storage, error) {
	switch cfg.Store {
	case config.StoreJSON:
		return NewJSONStorage(cfg.GetOutputPath()), nil
	case config.StoreSQLite:
		path := cfg.GetSQLitePath()
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
		return OpenSQLite(path)
	case config.StoreMySQL:
		return OpenMySQL(cfg.StoreDSN)
	case config.StoreNone:
		return Discard{}, nil
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

// Discard stores nothing.
type Discard struct{}

func (Discard) Save(*domain.RunRecord) error { return nil }
func (Discard) Last() (*domain.RunRecord, error) { return nil, ErrNoRuns }
func (Discard) Close() error { return nil }
