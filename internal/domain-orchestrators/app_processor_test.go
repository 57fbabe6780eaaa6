package orchestrators

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/ochairo/mobscan/internal/domain/entities"
	"github.com/ochairo/mobscan/internal/domain/interfaces/gateways"
)

const testBatchDir = "/reports/batch_3"

func newTestProcessor(scanner *mockScanner, store *mockArtifactStore, recorder *mockRecorder, logger *recordingLogger) *AppProcessor {
	return NewAppProcessor(scanner, syncCompletion{scanner}, store, recorder, logger)
}

// syncCompletion mirrors the default strategy without importing the adapter package
type syncCompletion struct {
	scanner gateways.ScannerGateway
}

func (s syncCompletion) AwaitCompletion(ctx context.Context, scanHash string) error {
	if err := s.scanner.TriggerScan(ctx, scanHash); err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	return nil
}

// Test a fully successful package
func TestAppProcessor_Success(t *testing.T) {
	scanner := &mockScanner{scorecards: map[string]*entities.Scorecard{
		"notes": newScorecard("Field Notes", "com.example.notes", "61.6", 2, 0, 5, 1),
	}}
	store := newMockArtifactStore()
	recorder := &mockRecorder{}
	logger := &recordingLogger{}

	ok := newTestProcessor(scanner, store, recorder, logger).ProcessApp(context.Background(), "/apps/notes.apk", 3, testBatchDir)
	if !ok {
		t.Fatalf("ProcessApp() = false, log: %v", logger.messages)
	}

	if len(recorder.scans) != 1 {
		t.Fatalf("expected one recorded scan, got %d", len(recorder.scans))
	}
	scan := recorder.scans[0]

	wantIcon := filepath.Join(testBatchDir, "icons", "Field_Notes_notes_icon.png")
	wantPDF := filepath.Join(testBatchDir, "reports", "Field_Notes_notes.pdf")
	if scan.IconPath != wantIcon || scan.PDFPath != wantPDF {
		t.Errorf("paths = %s, %s", scan.IconPath, scan.PDFPath)
	}
	if store.files[wantIcon].String() != "PNG" || store.files[wantPDF].String() != "%PDF" {
		t.Error("artifacts not written")
	}

	if scan.Platform != entities.PlatformAndroid || scan.BatchID != 3 || scan.SecurityScore != 62 {
		t.Errorf("unexpected scan: %+v", scan)
	}
	if scan.HighFindings != 2 || scan.WarningFindings != 0 || scan.InfoFindings != 5 || scan.SecureFindings != 1 {
		t.Errorf("counts must equal category lengths: %+v", scan)
	}
	if scan.AppName != "Field Notes" || scan.BundleID != "com.example.notes" || scan.Version != "1.0" {
		t.Errorf("unexpected identity: %+v", scan)
	}
	if scan.ScanDate.IsZero() {
		t.Error("scan date not set")
	}
}

// Test platform comes from the file extension only
func TestAppProcessor_PlatformFromExtension(t *testing.T) {
	recorder := &mockRecorder{}
	p := newTestProcessor(&mockScanner{}, newMockArtifactStore(), recorder, &recordingLogger{})

	for _, path := range []string{"/apps/a.ipa", "/apps/b.apk"} {
		if !p.ProcessApp(context.Background(), path, 1, testBatchDir) {
			t.Fatalf("ProcessApp(%s) failed", path)
		}
	}

	if recorder.scans[0].Platform != entities.PlatformIOS || recorder.scans[1].Platform != entities.PlatformAndroid {
		t.Errorf("platforms = %s, %s", recorder.scans[0].Platform, recorder.scans[1].Platform)
	}
}

// Test icon failures never fail the package
func TestAppProcessor_IconSoftFailure(t *testing.T) {
	for _, iconErr := range []error{gateways.ErrNotFound, errors.New("unexpected content type received: \"text/html\"")} {
		t.Run(iconErr.Error(), func(t *testing.T) {
			store := newMockArtifactStore()
			recorder := &mockRecorder{}
			logger := &recordingLogger{}

			ok := newTestProcessor(&mockScanner{iconErr: iconErr}, store, recorder, logger).
				ProcessApp(context.Background(), "/apps/x.apk", 1, testBatchDir)
			if !ok {
				t.Fatal("icon failure should not fail the package")
			}
			if recorder.scans[0].IconPath != "" {
				t.Errorf("icon path = %q, want empty", recorder.scans[0].IconPath)
			}
			if len(store.removed) != 1 {
				t.Errorf("partial icon should be removed, removed = %v", store.removed)
			}
			if !logger.contains("WARN") {
				t.Error("expected a warning")
			}
		})
	}
}

// Test a PDF failure always fails the package
func TestAppProcessor_PDFHardFailure(t *testing.T) {
	recorder := &mockRecorder{}
	logger := &recordingLogger{}
	scanner := &mockScanner{pdfErr: map[string]error{"x": errors.New("pdf report failed with status 500")}}

	if newTestProcessor(scanner, newMockArtifactStore(), recorder, logger).ProcessApp(context.Background(), "/apps/x.ipa", 1, testBatchDir) {
		t.Fatal("PDF failure must fail the package")
	}
	if len(recorder.scans) != 0 {
		t.Error("nothing should be recorded")
	}
	if !logger.contains("Failed to process x.ipa") {
		t.Errorf("failure not logged with file name: %v", logger.messages)
	}
}

// Test each step's failure marks the package failed
func TestAppProcessor_StepFailures(t *testing.T) {
	tests := []struct {
		name     string
		scanner  *mockScanner
		store    *mockArtifactStore
		recorder *mockRecorder
	}{
		{name: "upload", scanner: &mockScanner{uploadErr: map[string]error{"x.apk": errors.New("upload failed with status 500")}}},
		{name: "scorecard", scanner: &mockScanner{scorecardErr: errors.New("scorecard failed")}},
		{name: "score out of range", scanner: &mockScanner{scorecards: map[string]*entities.Scorecard{
			"x": newScorecard("X", "x", "140", 0, 0, 0, 0),
		}}},
		{name: "store", scanner: &mockScanner{}, store: &mockArtifactStore{files: map[string]*bytes.Buffer{}, createErr: errors.New("disk full")}},
		{name: "database", scanner: &mockScanner{}, recorder: &mockRecorder{fail: true}},
		{name: "panic", scanner: &mockScanner{panicOn: "x.apk"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := tt.store
			if store == nil {
				store = newMockArtifactStore()
			}
			recorder := tt.recorder
			if recorder == nil {
				recorder = &mockRecorder{}
			}

			if newTestProcessor(tt.scanner, store, recorder, &recordingLogger{}).ProcessApp(context.Background(), "/apps/x.apk", 1, testBatchDir) {
				t.Error("ProcessApp() should fail")
			}
		})
	}
}

// Test a scorecard without optional fields is stored with defaults
func TestAppProcessor_ScorecardDefaults(t *testing.T) {
	recorder := &mockRecorder{}
	scanner := &mockScanner{scorecards: map[string]*entities.Scorecard{"bare": {}}}

	if !newTestProcessor(scanner, newMockArtifactStore(), recorder, &recordingLogger{}).ProcessApp(context.Background(), "/apps/bare.apk", 1, testBatchDir) {
		t.Fatal("ProcessApp() failed")
	}

	scan := recorder.scans[0]
	if scan.AppName != "Unknown" || scan.BundleID != "Unknown" || scan.Version != "Unknown" || scan.SecurityScore != 0 {
		t.Errorf("defaults not applied: %+v", scan)
	}
	if scan.PDFPath != filepath.Join(testBatchDir, "reports", "Unknown_bare.pdf") {
		t.Errorf("pdf path = %s", scan.PDFPath)
	}
}

// Test hostile app names keep artifacts inside the batch directory
func TestAppProcessor_AppNameWithPathElements(t *testing.T) {
	tests := []struct {
		appName  string
		wantStem string
	}{
		{"../../../outside", ".._.._.._outside_evil"},
		{"AC/DC Live", "AC_DC_Live_evil"},
	}

	for _, tt := range tests {
		scanner := &mockScanner{scorecards: map[string]*entities.Scorecard{
			"evil": newScorecard(tt.appName, "com.example.evil", "50", 0, 0, 0, 0),
		}}
		store := newMockArtifactStore()
		recorder := &mockRecorder{}
		logger := &recordingLogger{}

		if !newTestProcessor(scanner, store, recorder, logger).ProcessApp(context.Background(), "/apps/evil.apk", 3, testBatchDir) {
			t.Fatalf("ProcessApp(%q) = false, log: %v", tt.appName, logger.messages)
		}

		scan := recorder.scans[0]
		wantIcon := filepath.Join(testBatchDir, "icons", tt.wantStem+"_icon.png")
		wantPDF := filepath.Join(testBatchDir, "reports", tt.wantStem+".pdf")
		if scan.IconPath != wantIcon || scan.PDFPath != wantPDF {
			t.Errorf("%q: paths = %s, %s", tt.appName, scan.IconPath, scan.PDFPath)
		}
		for path := range store.files {
			if filepath.Dir(path) != filepath.Join(testBatchDir, "icons") && filepath.Dir(path) != filepath.Join(testBatchDir, "reports") {
				t.Errorf("%q: artifact written to %s", tt.appName, path)
			}
		}
		if scan.AppName != tt.appName {
			t.Errorf("recorded app name = %q, want %q", scan.AppName, tt.appName)
		}
	}
}
