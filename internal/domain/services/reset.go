package services

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/ochairo/mobscan/internal/domain/interfaces"
	"github.com/ochairo/mobscan/internal/domain/interfaces/gateways"
	"github.com/ochairo/mobscan/internal/domain/interfaces/repositories"
)

// Resetter wipes all scan data: database rows and batch directories
type Resetter struct {
	repo   repositories.MaintenanceRepository
	store  gateways.ArtifactStore
	logger interfaces.Logger
}

// NewResetter creates a new resetter
func NewResetter(repo repositories.MaintenanceRepository, store gateways.ArtifactStore, logger interfaces.Logger) *Resetter {
	return &Resetter{repo: repo, store: store, logger: logger}
}

// Reset clears the database and removes every batch directory.
// Both steps run even if the first fails; errors are aggregated.
func (r *Resetter) Reset(ctx context.Context) ([]string, error) {
	var merr *multierror.Error

	if err := r.repo.ClearAll(ctx); err != nil {
		merr = multierror.Append(merr, fmt.Errorf("failed to clear database: %w", err))
	} else {
		r.logger.Info("Database cleared")
	}

	removed, err := r.store.RemoveBatchDirs()
	for _, name := range removed {
		r.logger.Info("Removed folder: " + name)
	}
	if err != nil {
		merr = multierror.Append(merr, err)
	}

	return removed, merr.ErrorOrNil()
}
