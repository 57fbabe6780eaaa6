package services

import (
	"context"

	"github.com/ochairo/mobscan/internal/domain/entities"
	"github.com/ochairo/mobscan/internal/domain/interfaces"
	"github.com/ochairo/mobscan/internal/domain/interfaces/repositories"
	"github.com/ochairo/mobscan/internal/domain/interfaces/services"
)

type scanRecorder struct {
	repo   repositories.ScanRepository
	logger interfaces.Logger
}

// NewScanRecorder creates the persistence boundary used by the app processor
func NewScanRecorder(repo repositories.ScanRepository, logger interfaces.Logger) services.ScanRecorder {
	return &scanRecorder{repo: repo, logger: logger}
}

// Record inserts the scan; failures are logged and reported as false
func (r *scanRecorder) Record(ctx context.Context, scan *entities.Scan) bool {
	if err := r.repo.InsertScan(ctx, scan); err != nil {
		r.logger.Error("Database error: "+err.Error(),
			interfaces.F("batch_id", scan.BatchID),
			interfaces.F("app_name", scan.AppName))
		return false
	}
	return true
}
