package kv

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Store is a string-keyed byte store safe for concurrent use.
type Store interface {
	// Get returns the value stored under key. ok is false when absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Keys lists stored keys beginning with prefix in ascending order.
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Open constructs the store named by backend.
func Open(backend, path string, logger *slog.Logger) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case BackendMemory:
		return NewMemory(), nil
	case BackendJSON:
		return OpenJSON(path, logger)
	case BackendSQLite, "":
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", backend)
	}
}
