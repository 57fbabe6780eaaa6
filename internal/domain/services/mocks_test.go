package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ochairo/mobscan/internal/domain/entities"
)

// Mock implementations for testing
type mockBatchRepository struct {
	nextID    int64
	createErr error
	deleteErr error
	created   []entities.Batch
	deleted   []int64
}

func (m *mockBatchRepository) CreateBatch(_ context.Context, period string, createdAt time.Time) (int64, error) {
	if m.createErr != nil {
		return 0, m.createErr
	}
	m.nextID++
	m.created = append(m.created, entities.Batch{ID: m.nextID, BatchDate: period, CreatedAt: createdAt})
	return m.nextID, nil
}

func (m *mockBatchRepository) DeleteBatch(_ context.Context, batchID int64) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, batchID)
	return nil
}

func (m *mockBatchRepository) GetBatch(_ context.Context, _ int64) (*entities.Batch, error) {
	return nil, errors.New("not implemented")
}

func (m *mockBatchRepository) ListBatches(_ context.Context) ([]entities.Batch, error) {
	return nil, errors.New("not implemented")
}

type mockScanRepository struct {
	err   error
	scans []entities.Scan
}

func (m *mockScanRepository) InsertScan(_ context.Context, scan *entities.Scan) error {
	if m.err != nil {
		return m.err
	}
	m.scans = append(m.scans, *scan)
	return nil
}

func (m *mockScanRepository) ListScansByBatch(_ context.Context, batchID int64) ([]entities.Scan, error) {
	var out []entities.Scan
	for _, s := range m.scans {
		if s.BatchID == batchID {
			out = append(out, s)
		}
	}
	return out, nil
}

type mockArtifactStore struct {
	prepareErr error
	removed    []string
	removeErr  error
}

func (m *mockArtifactStore) PrepareBatchDir(batchID int64) (string, error) {
	if m.prepareErr != nil {
		return "", m.prepareErr
	}
	return fmt.Sprintf("reports/batch_%d", batchID), nil
}

func (m *mockArtifactStore) Create(_ string) (io.WriteCloser, error) {
	return nil, errors.New("not implemented")
}

func (m *mockArtifactStore) Remove(_ string) error {
	return nil
}

func (m *mockArtifactStore) RemoveBatchDirs() ([]string, error) {
	return m.removed, m.removeErr
}

type mockMaintenanceRepository struct {
	err     error
	cleared bool
}

func (m *mockMaintenanceRepository) ClearAll(_ context.Context) error {
	if m.err != nil {
		return m.err
	}
	m.cleared = true
	return nil
}
