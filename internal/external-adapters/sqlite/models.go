package sqlite

import (
	"time"

	"github.com/ochairo/mobscan/internal/domain/entities"
)

type batchRow struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	BatchDate string    `gorm:"column:batch_date"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (batchRow) TableName() string {
	return "batches"
}

func (r batchRow) toEntity() entities.Batch {
	return entities.Batch{ID: r.ID, BatchDate: r.BatchDate, CreatedAt: r.CreatedAt}
}

type scanRow struct {
	ID              int64     `gorm:"column:id;primaryKey;autoIncrement"`
	BatchID         int64     `gorm:"column:batch_id"`
	ScanDate        time.Time `gorm:"column:scan_date"`
	AppName         string    `gorm:"column:app_name"`
	BundleID        string    `gorm:"column:bundle_id"`
	Version         string    `gorm:"column:version"`
	Platform        string    `gorm:"column:platform"`
	SecurityScore   int       `gorm:"column:security_score"`
	HighFindings    int       `gorm:"column:high_findings"`
	WarningFindings int       `gorm:"column:warning_findings"`
	InfoFindings    int       `gorm:"column:info_findings"`
	SecureFindings  int       `gorm:"column:secure_findings"`
	IconPath        string    `gorm:"column:icon_path"`
	PDFPath         string    `gorm:"column:pdf_path"`
	CreatedAt       time.Time `gorm:"column:created_at"`
}

func (scanRow) TableName() string {
	return "scans"
}

func newScanRow(s *entities.Scan) scanRow {
	return scanRow{
		BatchID:         s.BatchID,
		ScanDate:        s.ScanDate,
		AppName:         s.AppName,
		BundleID:        s.BundleID,
		Version:         s.Version,
		Platform:        string(s.Platform),
		SecurityScore:   s.SecurityScore,
		HighFindings:    s.HighFindings,
		WarningFindings: s.WarningFindings,
		InfoFindings:    s.InfoFindings,
		SecureFindings:  s.SecureFindings,
		IconPath:        s.IconPath,
		PDFPath:         s.PDFPath,
		CreatedAt:       s.CreatedAt,
	}
}

func (r scanRow) toEntity() entities.Scan {
	return entities.Scan{
		ID:              r.ID,
		BatchID:         r.BatchID,
		ScanDate:        r.ScanDate,
		AppName:         r.AppName,
		BundleID:        r.BundleID,
		Version:         r.Version,
		Platform:        entities.Platform(r.Platform),
		SecurityScore:   r.SecurityScore,
		HighFindings:    r.HighFindings,
		WarningFindings: r.WarningFindings,
		InfoFindings:    r.InfoFindings,
		SecureFindings:  r.SecureFindings,
		IconPath:        r.IconPath,
		PDFPath:         r.PDFPath,
		CreatedAt:       r.CreatedAt,
	}
}
