// Package entities defines core domain models and data structures.
package entities

import (
	"fmt"
	"time"
)

// Sub-directories of a batch directory
const (
	ReportsDirName = "reports"
	IconsDirName   = "icons"
)

// BatchPeriodLayout is the time layout of a batch period label (year-month)
const BatchPeriodLayout = "2006-01"

// Batch groups the scans produced by one orchestrator run
type Batch struct {
	ID        int64     `json:"id"`
	BatchDate string    `json:"batch_date"`
	CreatedAt time.Time `json:"created_at"`
}

// BatchPeriod returns the period label for t
func BatchPeriod(t time.Time) string {
	return t.Format(BatchPeriodLayout)
}

// BatchDirName returns the directory name holding a batch's artifacts
func BatchDirName(batchID int64) string {
	return fmt.Sprintf("batch_%d", batchID)
}
