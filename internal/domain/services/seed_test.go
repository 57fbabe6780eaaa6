package services

import (
	"context"
	"testing"
	"time"

	"github.com/ochairo/mobscan/internal/domain/entities"
)

// Test seeding creates the requested number of batches with unique apps
func TestSeeder_Seed(t *testing.T) {
	batches := &mockBatchRepository{}
	scans := &mockScanRepository{}
	seeder := NewSeeder(batches, scans, 42)
	seeder.now = func() time.Time { return time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC) }

	result, err := seeder.Seed(context.Background(), DefaultAppPool(), 3, 4)
	if err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	if result.Batches != 3 || result.Scans != 12 {
		t.Errorf("result = %+v, want 3 batches / 12 scans", result)
	}

	// Batches go back one day at a time, crossing into the previous month
	if batches.created[2].BatchDate != "2026-02" {
		t.Errorf("third batch period = %s, want 2026-02", batches.created[2].BatchDate)
	}

	seen := map[int64]map[string]bool{}
	for _, s := range scans.scans {
		if seen[s.BatchID] == nil {
			seen[s.BatchID] = map[string]bool{}
		}
		if seen[s.BatchID][s.BundleID] {
			t.Errorf("bundle %s repeated in batch %d", s.BundleID, s.BatchID)
		}
		seen[s.BatchID][s.BundleID] = true

		if s.SecurityScore < 0 || s.SecurityScore > 100 {
			t.Errorf("score %d out of range", s.SecurityScore)
		}
		if s.HighFindings < 0 || s.WarningFindings < 0 || s.InfoFindings < 0 || s.SecureFindings < 0 {
			t.Errorf("negative finding count in %+v", s)
		}
	}
}

// Test scans per batch is capped by pool size
func TestSeeder_Seed_CappedByPool(t *testing.T) {
	scans := &mockScanRepository{}
	seeder := NewSeeder(&mockBatchRepository{}, scans, 1)

	pool := DefaultAppPool()[:2]
	result, err := seeder.Seed(context.Background(), pool, 1, 8)
	if err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	if result.Scans != 2 {
		t.Errorf("Scans = %d, want 2", result.Scans)
	}
}

// Test jitter stays inside bounds at the edges
func TestSeeder_Jitter_Clamped(t *testing.T) {
	seeder := NewSeeder(&mockBatchRepository{}, &mockScanRepository{}, 7)
	app := entities.AppTemplate{SecurityScore: 100}

	for i := 0; i < 100; i++ {
		scan := seeder.jitter(app)
		if scan.SecurityScore > 100 || scan.HighFindings < 0 {
			t.Fatalf("jitter out of bounds: %+v", scan)
		}
	}
}

// Test empty pool is rejected
func TestSeeder_Seed_EmptyPool(t *testing.T) {
	seeder := NewSeeder(&mockBatchRepository{}, &mockScanRepository{}, 1)
	if _, err := seeder.Seed(context.Background(), nil, 1, 1); err == nil {
		t.Fatal("Expected error for empty pool")
	}
}
