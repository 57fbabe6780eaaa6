package services

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/ochairo/mobscan/internal/domain/entities"
	"github.com/ochairo/mobscan/internal/domain/interfaces/repositories"
)

// SeedResult reports what the seeder inserted
type SeedResult struct {
	Batches int
	Scans   int
}

// Seeder writes synthetic batches and scans for dashboard testing
type Seeder struct {
	batches repositories.BatchRepository
	scans   repositories.ScanRepository
	rng     *rand.Rand
	now     func() time.Time
}

// NewSeeder creates a seeder; the same seed value yields the same data
func NewSeeder(batches repositories.BatchRepository, scans repositories.ScanRepository, seed int64) *Seeder {
	return &Seeder{
		batches: batches,
		scans:   scans,
		//nolint:gosec // G404: synthetic test data, not security sensitive
		rng: rand.New(rand.NewSource(seed)),
		now: time.Now,
	}
}

// Seed creates numBatches batches dated one day apart going back from now.
// Each batch gets up to scansPerBatch distinct apps drawn from pool.
func (s *Seeder) Seed(ctx context.Context, pool []entities.AppTemplate, numBatches, scansPerBatch int) (*SeedResult, error) {
	if len(pool) == 0 {
		return nil, fmt.Errorf("app pool is empty")
	}
	if numBatches < 0 || scansPerBatch < 0 {
		return nil, fmt.Errorf("batch and scan counts must not be negative")
	}

	result := &SeedResult{}
	current := s.now()

	for i := 0; i < numBatches; i++ {
		batchTime := current.AddDate(0, 0, -i)

		batchID, err := s.batches.CreateBatch(ctx, entities.BatchPeriod(batchTime), batchTime)
		if err != nil {
			return result, fmt.Errorf("failed to insert batch: %w", err)
		}
		result.Batches++

		available := make([]entities.AppTemplate, len(pool))
		copy(available, pool)

		count := min(scansPerBatch, len(available))
		for j := 0; j < count; j++ {
			idx := s.rng.Intn(len(available))
			app := available[idx]
			available = append(available[:idx], available[idx+1:]...)

			scan := s.jitter(app)
			scan.BatchID = batchID
			scan.ScanDate = batchTime
			scan.CreatedAt = batchTime

			if err := s.scans.InsertScan(ctx, scan); err != nil {
				return result, fmt.Errorf("failed to insert scan for %s: %w", app.Name, err)
			}
			result.Scans++
		}
	}

	return result, nil
}

// jitter varies the template's score and finding counts around their base values
func (s *Seeder) jitter(app entities.AppTemplate) *entities.Scan {
	return &entities.Scan{
		AppName:         app.Name,
		BundleID:        app.BundleID,
		Version:         app.Version,
		Platform:        app.Platform,
		SecurityScore:   clamp(app.SecurityScore+s.between(-5, 5), 0, 100),
		HighFindings:    max(0, app.HighFindings+s.between(-2, 2)),
		WarningFindings: max(0, app.WarningFindings+s.between(-3, 3)),
		InfoFindings:    max(0, app.InfoFindings+s.between(-1, 1)),
		SecureFindings:  max(0, app.SecureFindings+s.between(-1, 1)),
		IconPath:        app.IconPath,
		PDFPath:         app.PDFPath,
	}
}

func (s *Seeder) between(lo, hi int) int {
	return lo + s.rng.Intn(hi-lo+1)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}

// DefaultAppPool returns the built-in seed templates
func DefaultAppPool() []entities.AppTemplate {
	return []entities.AppTemplate{
		{Name: "Portal To Go", BundleID: "com.example.mobileportal.apk", Version: "5.5.10", Platform: entities.PlatformAndroid, SecurityScore: 44, HighFindings: 5, WarningFindings: 12, InfoFindings: 2, SecureFindings: 2},
		{Name: "Market Trader", BundleID: "MarketTrader_10.2.ipa", Version: "10.2", Platform: entities.PlatformIOS, SecurityScore: 53, HighFindings: 1, WarningFindings: 4, InfoFindings: 4, SecureFindings: 1},
		{Name: "Open", BundleID: "Open_3.3.0.ipa", Version: "3.3.0", Platform: entities.PlatformIOS, SecurityScore: 52, HighFindings: 1, WarningFindings: 8, InfoFindings: 3, SecureFindings: 1},
		{Name: "Market Trader", BundleID: "com.example.market.apk", Version: "10.1", Platform: entities.PlatformAndroid, SecurityScore: 43, HighFindings: 8, WarningFindings: 20, InfoFindings: 3, SecureFindings: 3},
		{Name: "Payments", BundleID: "com.example.payments.apk", Version: "6.1", Platform: entities.PlatformAndroid, SecurityScore: 52, HighFindings: 4, WarningFindings: 25, InfoFindings: 2, SecureFindings: 4},
		{Name: "Open Banking", BundleID: "com.example.openapp.apk", Version: "3.3.0", Platform: entities.PlatformAndroid, SecurityScore: 48, HighFindings: 5, WarningFindings: 15, InfoFindings: 2, SecureFindings: 3},
		{Name: "Wonder Rewards", BundleID: "com.example.loyalty.apk", Version: "1.8.7", Platform: entities.PlatformAndroid, SecurityScore: 52, HighFindings: 3, WarningFindings: 18, InfoFindings: 3, SecureFindings: 3},
		{Name: "MobilePortalBurger", BundleID: "Portal_To_Go_6.9.2.ipa", Version: "6.9.2", Platform: entities.PlatformIOS, SecurityScore: 54, HighFindings: 1, WarningFindings: 3, InfoFindings: 2, SecureFindings: 1},
		{Name: "Connect", BundleID: "com.example.connect.apk", Version: "6.0.0.3808", Platform: entities.PlatformAndroid, SecurityScore: 52, HighFindings: 2, WarningFindings: 14, InfoFindings: 2, SecureFindings: 2},
		{Name: "Pass", BundleID: "PASS_1.5.0.ipa", Version: "1.5.0", Platform: entities.PlatformIOS, SecurityScore: 53, HighFindings: 1, WarningFindings: 4, InfoFindings: 5, SecureFindings: 1},
	}
}
