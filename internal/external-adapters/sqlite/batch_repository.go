package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/ochairo/mobscan/internal/domain/entities"
)

// CreateBatch inserts a batch for period and returns the new id
func (s *Store) CreateBatch(ctx context.Context, period string, createdAt time.Time) (int64, error) {
	row := batchRow{BatchDate: period, CreatedAt: createdAt}
	err := s.withTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&row).Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to insert batch: %w", err)
	}
	return row.ID, nil
}

// DeleteBatch removes a batch row and its scans
func (s *Store) DeleteBatch(ctx context.Context, batchID int64) error {
	err := s.withTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("batch_id = ?", batchID).Delete(&scanRow{}).Error; err != nil {
			return err
		}
		return tx.Delete(&batchRow{}, batchID).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete batch %d: %w", batchID, err)
	}
	return nil
}

// GetBatch returns the batch or nil when absent
func (s *Store) GetBatch(ctx context.Context, batchID int64) (*entities.Batch, error) {
	var row batchRow
	err := s.withDB(ctx, func(db *gorm.DB) error {
		return db.First(&row, batchID).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load batch %d: %w", batchID, err)
	}

	batch := row.toEntity()
	return &batch, nil
}

// ListBatches returns all batches, newest id first
func (s *Store) ListBatches(ctx context.Context) ([]entities.Batch, error) {
	var rows []batchRow
	err := s.withDB(ctx, func(db *gorm.DB) error {
		return db.Order("id DESC").Find(&rows).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list batches: %w", err)
	}

	batches := make([]entities.Batch, 0, len(rows))
	for _, row := range rows {
		batches = append(batches, row.toEntity())
	}
	return batches, nil
}
