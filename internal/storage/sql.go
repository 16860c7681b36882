package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"balagh/internal/database"
)

// SQLStore persists values in the kv_store table
type SQLStore struct {
	db database.DBTX
}

// NewSQLStore creates a store on db, which may be a *database.DB or a *database.Tx
func NewSQLStore(db database.DBTX) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT store_value FROM kv_store WHERE store_key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return []byte(value), true, nil
}

func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.db.ExecContext(ctx, s.db.GetDialect().UpsertKVQuery(), key, string(value)); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM kv_store WHERE store_key = ?", key); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

// Entry is one stored row
type Entry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// List returns every row whose key starts with prefix, ordered by key
func (s *SQLStore) List(ctx context.Context, prefix string) ([]Entry, error) {
	query := "SELECT store_key, store_value FROM kv_store ORDER BY store_key"
	args := []interface{}{}
	if prefix != "" {
		query = "SELECT store_key, store_value FROM kv_store WHERE SUBSTR(store_key, 1, ?) = ? ORDER BY store_key"
		args = append(args, len(prefix), prefix)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Key, &e.Value); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
