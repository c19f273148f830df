// Package store persists the client's configuration between runs, the way a
// browser keeps values in local storage. Values are plain strings and every
// write replaces the previous value.
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

const (
	KeyAPIBaseURL = "apiBaseUrl"
	KeyToken      = "token"
)

type Store interface {
	// Get returns the value under key and whether it was set.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverBadger = "badger"
)

// Open opens the store of the given driver at path. An empty path selects
// the driver's default location under DefaultDir.
func Open(driver, path string) (Store, error) {
	if path == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, defaultName(driver))
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}

	switch driver {
	case DriverFile, "":
		return NewFileStore(path)
	case DriverSQLite:
		return NewSQLiteStore(path)
	case DriverBadger:
		return NewBadgerStore(path)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

// DefaultDir is ~/.postsclient.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}

	return filepath.Join(home, ".postsclient"), nil
}

func defaultName(driver string) string {
	switch driver {
	case DriverSQLite:
		return "storage.db"
	case DriverBadger:
		return "storage.badger"
	default:
		return "storage.json"
	}
}
