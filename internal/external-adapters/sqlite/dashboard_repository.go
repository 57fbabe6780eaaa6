package sqlite

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/ochairo/mobscan/internal/domain/entities"
)

const batchTrendsQuery = `
SELECT
	b.id AS batch_id,
	b.batch_date AS batch_date,
	COALESCE(SUM(s.high_findings), 0) AS high_risk,
	COALESCE(SUM(s.warning_findings), 0) AS medium_risk,
	COALESCE(SUM(s.info_findings), 0) AS low_risk,
	COALESCE(AVG(s.security_score), 0) AS avg_score,
	COALESCE(SUM(CASE WHEN s.platform = 'Android' THEN s.high_findings ELSE 0 END), 0) AS android_high_risk,
	COALESCE(SUM(CASE WHEN s.platform = 'iOS' THEN s.high_findings ELSE 0 END), 0) AS ios_high_risk
FROM batches b
JOIN scans s ON b.id = s.batch_id
GROUP BY b.id
ORDER BY b.created_at, b.id`

const inventoryQuery = `
WITH ranked AS (
	SELECT
		s.*,
		b.batch_date,
		ROW_NUMBER() OVER (
			PARTITION BY s.bundle_id
			ORDER BY b.batch_date DESC, s.id DESC
		) AS rn
	FROM scans s
	JOIN batches b ON s.batch_id = b.id
)
SELECT
	COALESCE(app_name, '') AS app_name,
	COALESCE(bundle_id, '') AS bundle_id,
	COALESCE(platform, '') AS platform,
	COALESCE(security_score, 0) AS security_score,
	COALESCE(high_findings, 0) AS high_findings,
	COALESCE(warning_findings, 0) AS warning_findings,
	COALESCE(info_findings, 0) AS info_findings,
	batch_id,
	batch_date,
	COALESCE(icon_path, '') AS icon_path
FROM ranked
WHERE rn = 1
ORDER BY app_name ASC`

const historyQuery = `
SELECT
	COALESCE(s.security_score, 0) AS security_score,
	COALESCE(s.high_findings, 0) AS high_findings,
	COALESCE(s.warning_findings, 0) AS warning_findings,
	COALESCE(s.info_findings, 0) AS info_findings,
	b.batch_date AS batch_date
FROM scans s
JOIN batches b ON s.batch_id = b.id
WHERE s.bundle_id = ?
ORDER BY b.batch_date ASC, s.id ASC`

type trendRow struct {
	BatchID         int64   `gorm:"column:batch_id"`
	BatchDate       string  `gorm:"column:batch_date"`
	HighRisk        int     `gorm:"column:high_risk"`
	MediumRisk      int     `gorm:"column:medium_risk"`
	LowRisk         int     `gorm:"column:low_risk"`
	AvgScore        float64 `gorm:"column:avg_score"`
	AndroidHighRisk int     `gorm:"column:android_high_risk"`
	IOSHighRisk     int     `gorm:"column:ios_high_risk"`
}

type inventoryRow struct {
	AppName         string `gorm:"column:app_name"`
	BundleID        string `gorm:"column:bundle_id"`
	Platform        string `gorm:"column:platform"`
	SecurityScore   int    `gorm:"column:security_score"`
	HighFindings    int    `gorm:"column:high_findings"`
	WarningFindings int    `gorm:"column:warning_findings"`
	InfoFindings    int    `gorm:"column:info_findings"`
	BatchID         int64  `gorm:"column:batch_id"`
	BatchDate       string `gorm:"column:batch_date"`
	IconPath        string `gorm:"column:icon_path"`
}

type historyRow struct {
	SecurityScore   int    `gorm:"column:security_score"`
	HighFindings    int    `gorm:"column:high_findings"`
	WarningFindings int    `gorm:"column:warning_findings"`
	InfoFindings    int    `gorm:"column:info_findings"`
	BatchDate       string `gorm:"column:batch_date"`
}

// BatchTrends aggregates findings per batch that has scans, oldest first
func (s *Store) BatchTrends(ctx context.Context) ([]entities.BatchTrend, error) {
	var rows []trendRow
	err := s.withDB(ctx, func(db *gorm.DB) error {
		return db.Raw(batchTrendsQuery).Scan(&rows).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate batches: %w", err)
	}

	trends := make([]entities.BatchTrend, 0, len(rows))
	for _, r := range rows {
		trends = append(trends, entities.BatchTrend(r))
	}
	return trends, nil
}

// Inventory returns the latest scan of every bundle id ordered by app name
func (s *Store) Inventory(ctx context.Context) ([]entities.InventoryItem, error) {
	var rows []inventoryRow
	err := s.withDB(ctx, func(db *gorm.DB) error {
		return db.Raw(inventoryQuery).Scan(&rows).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory: %w", err)
	}

	items := make([]entities.InventoryItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, entities.InventoryItem(r))
	}
	return items, nil
}

// AppHistory returns the bundle's scan in batchID with its full history,
// or nil when the bundle was not scanned in that batch
func (s *Store) AppHistory(ctx context.Context, bundleID string, batchID int64) (*entities.AppHistory, error) {
	var (
		current batchRow
		scan    scanRow
		rows    []historyRow
	)

	err := s.withDB(ctx, func(db *gorm.DB) error {
		if err := db.Where("bundle_id = ? AND batch_id = ?", bundleID, batchID).Order("id DESC").First(&scan).Error; err != nil {
			return err
		}
		if err := db.First(&current, batchID).Error; err != nil {
			return err
		}
		return db.Raw(historyQuery, bundleID).Scan(&rows).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load history of %s: %w", bundleID, err)
	}

	currentScan := entities.AppScan{Scan: scan.toEntity(), BatchDate: current.BatchDate}
	history := make([]entities.HistoryPoint, 0, len(rows))
	for _, r := range rows {
		history = append(history, entities.HistoryPoint(r))
	}

	return &entities.AppHistory{
		CurrentScan: &currentScan,
		History:     history,
	}, nil
}
