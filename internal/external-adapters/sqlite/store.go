// Package sqlite persists batches and scans in a SQLite database file using gorm.
package sqlite

import (
	"context"
	"fmt"
	"os"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store opens a fresh connection for every call and closes it afterwards,
// so the file can be shared with other processes between calls.
type Store struct {
	path string
}

// NewStore creates a store for the database file at path
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}

// Exists reports whether the database file is present
func (s *Store) Exists() bool {
	info, err := os.Stat(s.path)
	return err == nil && !info.IsDir()
}

// withDB runs fn on a new connection that is closed when fn returns
func (s *Store) withDB(ctx context.Context, fn func(db *gorm.DB) error) error {
	db, err := gorm.Open(sqlite.Open(s.path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to open database %s: %w", s.path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to access database handle: %w", err)
	}
	//nolint:errcheck // Defer close on per-call connection
	defer sqlDB.Close()
	sqlDB.SetMaxOpenConns(1)

	db = db.WithContext(ctx)
	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return fn(db)
}

// withTx runs fn inside one transaction on a new connection
func (s *Store) withTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.withDB(ctx, func(db *gorm.DB) error {
		return db.Transaction(fn)
	})
}
