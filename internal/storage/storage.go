// Package storage persists configuration snapshots under versioned keys.
package storage

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/san-kum/confetti/internal/config"
)

// SchemaVersion tags the persisted keys. Bump it when the shape of the
// default tree changes incompatibly.
const SchemaVersion = 1

var ErrClosed = errors.New("storage: store closed")

func DefaultsKey(v int) string      { return fmt.Sprintf("defaults.v%d", v) }
func ConfigurationKey(v int) string { return fmt.Sprintf("configuration.v%d", v) }

// Store is a key-value store of snapshots. A missing key is not an error.
type Store interface {
	Get(key string) (config.Snapshot, bool, error)
	Set(key string, snap config.Snapshot) error
	Close() error
}

// Store kinds accepted by Open.
const (
	KindMemory   = "memory"
	KindFile     = "file"
	KindFileZstd = "file+zstd"
	KindSQLite   = "sqlite"
)

// Open creates a store of the given kind rooted at dir.
func Open(kind, dir string) (Store, error) {
	switch kind {
	case KindMemory:
		return NewMemoryStore(), nil
	case KindFile, "":
		return NewFileStore(dir, false)
	case KindFileZstd:
		return NewFileStore(dir, true)
	case KindSQLite:
		return OpenSQLite(filepath.Join(dir, "confetti.db"))
	default:
		return nil, fmt.Errorf("storage: unknown store kind %q", kind)
	}
}
