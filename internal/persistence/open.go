package persistence

import (
	"context"
	"fmt"

	"github.com/lox/blackjack/internal/storage"
	"github.com/lox/blackjack/internal/storage/file"
	"github.com/lox/blackjack/internal/storage/memory"
	"github.com/lox/blackjack/internal/storage/postgres"
	"github.com/lox/blackjack/internal/storage/sqlite"
)

// Backend names accepted by OpenStore.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// StoreOptions selects and locates a storage backend. Path is the directory
// for file and the database file for sqlite; DSN is used by postgres.
type StoreOptions struct {
	Backend string
	Path    string
	DSN     string
}

// OpenStore opens the configured backend.
func OpenStore(ctx context.Context, opts StoreOptions) (storage.Store, error) {
	switch opts.Backend {
	case BackendMemory, "":
		return memory.New(), nil
	case BackendFile:
		return file.Open(opts.Path)
	case BackendSQLite:
		return sqlite.Open(opts.Path)
	case BackendPostgres:
		return postgres.Open(ctx, opts.DSN)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}
