package sqlite

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// schemaStatements bootstrap an empty database. Existing tables are left as they are.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS batches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		batch_date TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS scans (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		batch_id INTEGER NOT NULL REFERENCES batches(id),
		scan_date TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		app_name TEXT,
		bundle_id TEXT,
		version TEXT,
		platform TEXT,
		security_score INTEGER,
		high_findings INTEGER,
		warning_findings INTEGER,
		info_findings INTEGER,
		secure_findings INTEGER,
		icon_path TEXT,
		pdf_path TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_scans_batch_id ON scans(batch_id)`,
	`CREATE INDEX IF NOT EXISTS idx_scans_bundle_id ON scans(bundle_id)`,
}

// EnsureSchema creates the batches and scans tables when missing.
// It creates the database file if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	return s.withTx(ctx, func(tx *gorm.DB) error {
		for _, stmt := range schemaStatements {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("failed to apply schema: %w", err)
			}
		}
		return nil
	})
}
