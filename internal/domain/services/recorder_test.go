package services

import (
	"context"
	"errors"
	"testing"

	"github.com/ochairo/mobscan/internal/domain/entities"
	"github.com/ochairo/mobscan/internal/domain/interfaces"
)

// Test successful insert reports true
func TestScanRecorder_Record_Success(t *testing.T) {
	repo := &mockScanRepository{}
	recorder := NewScanRecorder(repo, &interfaces.NoOpLogger{})

	if !recorder.Record(context.Background(), &entities.Scan{BatchID: 1, AppName: "bit"}) {
		t.Fatal("Record returned false")
	}
	if len(repo.scans) != 1 {
		t.Errorf("stored %d scans, want 1", len(repo.scans))
	}
}

// Test store errors become false instead of propagating
func TestScanRecorder_Record_StoreError(t *testing.T) {
	repo := &mockScanRepository{err: errors.New("FOREIGN KEY constraint failed")}
	recorder := NewScanRecorder(repo, &interfaces.NoOpLogger{})

	if recorder.Record(context.Background(), &entities.Scan{BatchID: 99}) {
		t.Fatal("Record returned true on store error")
	}
}
