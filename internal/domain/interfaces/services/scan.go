// Package services defines interfaces for domain service contracts.
package services

import (
	"context"

	"github.com/ochairo/mobscan/internal/domain/entities"
)

// BatchManager creates the grouping for one orchestrator run
type BatchManager interface {
	// CreateBatch inserts a batch row and prepares its output directories
	CreateBatch(ctx context.Context) (batchID int64, outputDir string, err error)
}

// ScanRecorder persists scan results
type ScanRecorder interface {
	// Record stores a scan and reports whether it was persisted.
	// Store errors are logged, never returned.
	Record(ctx context.Context, scan *entities.Scan) bool
}
