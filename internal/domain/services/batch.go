// Package services implements domain business logic and use cases.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/ochairo/mobscan/internal/domain/entities"
	"github.com/ochairo/mobscan/internal/domain/interfaces"
	"github.com/ochairo/mobscan/internal/domain/interfaces/gateways"
	"github.com/ochairo/mobscan/internal/domain/interfaces/repositories"
	"github.com/ochairo/mobscan/internal/domain/interfaces/services"
)

// batchManager implements BatchManager over a batch repository and an artifact store
type batchManager struct {
	repo   repositories.BatchRepository
	store  gateways.ArtifactStore
	logger interfaces.Logger
	now    func() time.Time
}

// NewBatchManager creates a new batch manager with dependency injection
func NewBatchManager(repo repositories.BatchRepository, store gateways.ArtifactStore, logger interfaces.Logger) services.BatchManager {
	return &batchManager{
		repo:   repo,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// CreateBatch inserts a batch tagged with the current year-month and creates
// its reports and icons directories. If the directories cannot be created the
// row is deleted again so that no empty batch is left behind.
func (m *batchManager) CreateBatch(ctx context.Context) (int64, string, error) {
	now := m.now()

	batchID, err := m.repo.CreateBatch(ctx, entities.BatchPeriod(now), now)
	if err != nil {
		return 0, "", fmt.Errorf("failed to insert batch: %w", err)
	}

	batchDir, err := m.store.PrepareBatchDir(batchID)
	if err != nil {
		var merr *multierror.Error
		merr = multierror.Append(merr, fmt.Errorf("failed to create directories for batch %d: %w", batchID, err))

		if rbErr := m.repo.DeleteBatch(ctx, batchID); rbErr != nil {
			merr = multierror.Append(merr, fmt.Errorf("failed to roll back batch %d: %w", batchID, rbErr))
		} else {
			m.logger.Warn("Rolled back batch after directory failure", interfaces.F("batch_id", batchID))
		}
		return 0, "", merr.ErrorOrNil()
	}

	return batchID, batchDir, nil
}
