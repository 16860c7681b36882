package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"balagh/internal/database"
	"balagh/internal/storage"
)

// BackupVersion is written into every export
const BackupVersion = "1.0"

// BackupData is the on-disk backup format: every kv_store row, optionally
// limited to one key prefix.
type BackupData struct {
	Version      string          `json:"version"`
	ExportedAt   time.Time       `json:"exported_at"`
	DatabaseType string          `json:"database_type"`
	Prefix       string          `json:"prefix,omitempty"`
	Entries      []storage.Entry `json:"entries"`
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// Export writes a backup of all rows under prefix to outputPath
func (s *BackupService) Export(ctx context.Context, outputPath, prefix string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(ctx, file, prefix); err != nil {
		return err
	}
	log.Printf("Database exported successfully to %s", outputPath)
	return nil
}

// ExportToWriter writes a backup of all rows under prefix to w
func (s *BackupService) ExportToWriter(ctx context.Context, w io.Writer, prefix string) error {
	entries, err := storage.NewSQLStore(s.db).List(ctx, prefix)
	if err != nil {
		return fmt.Errorf("failed to export entries: %w", err)
	}
	if entries == nil {
		entries = []storage.Entry{}
	}

	backup := &BackupData{
		Version:      BackupVersion,
		ExportedAt:   time.Now().UTC(),
		DatabaseType: s.db.Dialect.DriverName(),
		Prefix:       prefix,
		Entries:      entries,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	log.Printf("Exported %d entries", len(entries))
	return nil
}

// Import restores a backup file. With clear set, existing rows are removed first.
func (s *BackupService) Import(ctx context.Context, inputPath string, clear bool) error {
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()
	return s.ImportFromReader(ctx, file, clear)
}

// ImportFromReader restores a backup read from r in a single transaction
func (s *BackupService) ImportFromReader(ctx context.Context, r io.Reader, clear bool) error {
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}
	if backup.Version != BackupVersion {
		return fmt.Errorf("unsupported backup version %q", backup.Version)
	}

	log.Printf("Importing backup from %s (%s, %d entries)",
		backup.ExportedAt.Format(time.RFC3339), backup.DatabaseType, len(backup.Entries))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if clear {
		if _, err := tx.ExecContext(ctx, "DELETE FROM kv_store"); err != nil {
			return fmt.Errorf("failed to clear kv_store: %w", err)
		}
	}

	store := storage.NewSQLStore(tx)
	for _, e := range backup.Entries {
		if err := store.Set(ctx, e.Key, []byte(e.Value)); err != nil {
			return fmt.Errorf("failed to import %s: %w", e.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}

	log.Printf("Imported %d entries", len(backup.Entries))
	return nil
}
