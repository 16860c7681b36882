// Package storage provides the key/value persistence that device state is
// written through. Values are opaque bytes; callers own the encoding.
package storage

import (
	"context"
	"errors"
	"fmt"

	"balagh/internal/config"
	"balagh/internal/database"
)

// ErrNoDatabase is returned by Open when the SQL backend is selected without a database
var ErrNoDatabase = errors.New("sql storage requires a database connection")

// Store is a string-keyed byte store. A missing key is reported with ok=false
// and a nil error.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// Namespace returns a view of store where every key is stored as "prefix:key"
func Namespace(store Store, prefix string) Store {
	return &namespaced{store: store, prefix: prefix + ":"}
}

type namespaced struct {
	store  Store
	prefix string
}

func (n *namespaced) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return n.store.Get(ctx, n.prefix+key)
}

func (n *namespaced) Set(ctx context.Context, key string, value []byte) error {
	return n.store.Set(ctx, n.prefix+key, value)
}

func (n *namespaced) Remove(ctx context.Context, key string) error {
	return n.store.Remove(ctx, n.prefix+key)
}

// Open builds the backend selected by cfg.StorageBackend. The returned
// cleanup releases client connections; it does not close db.
func Open(ctx context.Context, cfg *config.Config, db *database.DB) (Store, func(), error) {
	switch cfg.StorageBackend {
	case config.StorageSQL, "":
		if db == nil {
			return nil, nil, ErrNoDatabase
		}
		return NewSQLStore(db), func() {}, nil
	case config.StorageRedis:
		s, err := NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	case config.StorageValkey:
		s, err := NewValkeyStore(cfg.ValkeyURL)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case config.StorageMemory:
		return NewMemoryStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage backend: %s", cfg.StorageBackend)
	}
}
