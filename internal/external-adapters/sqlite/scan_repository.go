package sqlite

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/ochairo/mobscan/internal/domain/entities"
)

// InsertScan stores one scan in a single transaction and sets its id
func (s *Store) InsertScan(ctx context.Context, scan *entities.Scan) error {
	row := newScanRow(scan)
	err := s.withTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&row).Error
	})
	if err != nil {
		return fmt.Errorf("failed to insert scan for %s: %w", scan.AppName, err)
	}

	scan.ID = row.ID
	scan.CreatedAt = row.CreatedAt
	return nil
}

// ListScansByBatch returns the scans of a batch in insertion order
func (s *Store) ListScansByBatch(ctx context.Context, batchID int64) ([]entities.Scan, error) {
	var rows []scanRow
	err := s.withDB(ctx, func(db *gorm.DB) error {
		return db.Where("batch_id = ?", batchID).Order("id").Find(&rows).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list scans of batch %d: %w", batchID, err)
	}

	scans := make([]entities.Scan, 0, len(rows))
	for _, row := range rows {
		scans = append(scans, row.toEntity())
	}
	return scans, nil
}

// ClearAll deletes every scan and then every batch
func (s *Store) ClearAll(ctx context.Context) error {
	err := s.withTx(ctx, func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if err := all.Delete(&scanRow{}).Error; err != nil {
			return err
		}
		return all.Delete(&batchRow{}).Error
	})
	if err != nil {
		return fmt.Errorf("failed to clear database: %w", err)
	}
	return nil
}
