// Package repositories defines interfaces for data access layers.
package repositories

import (
	"context"
	"time"

	"github.com/ochairo/mobscan/internal/domain/entities"
)

// BatchRepository defines the interface for batch rows
type BatchRepository interface {
	// CreateBatch inserts a batch for the given period and returns its id
	CreateBatch(ctx context.Context, period string, createdAt time.Time) (int64, error)

	// DeleteBatch removes a batch row
	DeleteBatch(ctx context.Context, batchID int64) error

	// GetBatch returns a batch or nil when it does not exist
	GetBatch(ctx context.Context, batchID int64) (*entities.Batch, error)

	// ListBatches returns all batches, newest first
	ListBatches(ctx context.Context) ([]entities.Batch, error)
}

// ScanRepository defines the interface for scan rows
type ScanRepository interface {
	// InsertScan stores one scan row
	InsertScan(ctx context.Context, scan *entities.Scan) error

	// ListScansByBatch returns the scans of a batch
	ListScansByBatch(ctx context.Context, batchID int64) ([]entities.Scan, error)
}

// DashboardRepository defines read models served to the dashboard
type DashboardRepository interface {
	BatchTrends(ctx context.Context) ([]entities.BatchTrend, error)
	Inventory(ctx context.Context) ([]entities.InventoryItem, error)

	// AppHistory returns nil when the bundle has no scan in the batch
	AppHistory(ctx context.Context, bundleID string, batchID int64) (*entities.AppHistory, error)
}

// MaintenanceRepository defines destructive bulk operations
type MaintenanceRepository interface {
	// ClearAll deletes every scan and batch row
	ClearAll(ctx context.Context) error
}
