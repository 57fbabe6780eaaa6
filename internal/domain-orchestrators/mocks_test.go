package orchestrators

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ochairo/mobscan/internal/domain/entities"
	"github.com/ochairo/mobscan/internal/domain/interfaces"
	"github.com/ochairo/mobscan/internal/domain/interfaces/gateways"
)

// Mock implementations for testing

// mockScanner answers per package base name; the hash is the base name without extension
type mockScanner struct {
	authErr      error
	uploadErr    map[string]error
	scorecards   map[string]*entities.Scorecard
	scorecardErr error
	iconErr      error
	pdfErr       map[string]error
	panicOn      string
	calls        []string
}

func (m *mockScanner) Authenticate(_ context.Context) error {
	m.calls = append(m.calls, "auth")
	return m.authErr
}

func (m *mockScanner) Upload(_ context.Context, filePath string) (string, error) {
	name := filepath.Base(filePath)
	m.calls = append(m.calls, "upload:"+name)
	if name == m.panicOn {
		panic("boom")
	}
	if err := m.uploadErr[name]; err != nil {
		return "", err
	}
	return strings.TrimSuffix(name, filepath.Ext(name)), nil
}

func (m *mockScanner) TriggerScan(_ context.Context, scanHash string) error {
	m.calls = append(m.calls, "scan:"+scanHash)
	return nil
}

func (m *mockScanner) Scorecard(_ context.Context, scanHash string) (*entities.Scorecard, error) {
	if m.scorecardErr != nil {
		return nil, m.scorecardErr
	}
	if sc, ok := m.scorecards[scanHash]; ok {
		return sc, nil
	}
	return newScorecard("App "+scanHash, scanHash+".apk", "50", 1, 2, 3, 4), nil
}

func (m *mockScanner) DownloadIcon(_ context.Context, _ string, w io.Writer) error {
	if m.iconErr != nil {
		_, _ = io.WriteString(w, "partial")
		return m.iconErr
	}
	_, err := io.WriteString(w, "PNG")
	return err
}

func (m *mockScanner) DownloadPDF(_ context.Context, scanHash string, w io.Writer) error {
	if err := m.pdfErr[scanHash]; err != nil {
		return err
	}
	_, err := io.WriteString(w, "%PDF")
	return err
}

func newScorecard(appName, fileName, score string, high, warning, info, secure int) *entities.Scorecard {
	sc := &entities.Scorecard{
		AppName:     &appName,
		FileName:    &fileName,
		VersionName: strPtr("1.0"),
		High:        make([]entities.Finding, high),
		Warning:     make([]entities.Finding, warning),
		Info:        make([]entities.Finding, info),
		Secure:      make([]entities.Finding, secure),
	}
	if score != "" {
		n := json.Number(score)
		sc.SecurityScore = &n
	}
	return sc
}

func strPtr(s string) *string {
	return &s
}

type nopCloserBuffer struct {
	*bytes.Buffer
}

func (nopCloserBuffer) Close() error { return nil }

// mockArtifactStore keeps artifacts in memory
type mockArtifactStore struct {
	files     map[string]*bytes.Buffer
	removed   []string
	createErr error
}

func newMockArtifactStore() *mockArtifactStore {
	return &mockArtifactStore{files: make(map[string]*bytes.Buffer)}
}

func (m *mockArtifactStore) PrepareBatchDir(batchID int64) (string, error) {
	return filepath.Join("/reports", entities.BatchDirName(batchID)), nil
}

func (m *mockArtifactStore) Create(path string) (io.WriteCloser, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	buf := &bytes.Buffer{}
	m.files[path] = buf
	return nopCloserBuffer{buf}, nil
}

func (m *mockArtifactStore) Remove(path string) error {
	delete(m.files, path)
	m.removed = append(m.removed, path)
	return nil
}

func (m *mockArtifactStore) RemoveBatchDirs() ([]string, error) {
	return nil, errors.New("not implemented")
}

type mockRecorder struct {
	fail  bool
	scans []entities.Scan
}

func (m *mockRecorder) Record(_ context.Context, scan *entities.Scan) bool {
	if m.fail {
		return false
	}
	m.scans = append(m.scans, *scan)
	return true
}

type mockBatchManager struct {
	id      int64
	err     error
	created int
}

func (m *mockBatchManager) CreateBatch(_ context.Context) (int64, string, error) {
	m.created++
	if m.err != nil {
		return 0, "", m.err
	}
	return m.id, fmt.Sprintf("/reports/batch_%d", m.id), nil
}

type mockProcessor struct {
	results   map[string]bool
	processed []string
}

func (m *mockProcessor) ProcessApp(_ context.Context, filePath string, _ int64, _ string) bool {
	name := filepath.Base(filePath)
	m.processed = append(m.processed, name)
	return m.results[name]
}

type mockManifestWriter struct {
	written *entities.BatchManifest
	dir     string
	err     error
}

func (m *mockManifestWriter) Build(batchID int64, scans []entities.Scan) (*entities.BatchManifest, error) {
	manifest := &entities.BatchManifest{BatchID: batchID}
	for _, s := range scans {
		manifest.Entries = append(manifest.Entries, entities.ManifestEntry{AppName: s.AppName})
	}
	return manifest, nil
}

func (m *mockManifestWriter) Write(batchDir string, manifest *entities.BatchManifest) error {
	if m.err != nil {
		return m.err
	}
	m.dir = batchDir
	m.written = manifest
	return nil
}

type mockScanRepository struct {
	scans []entities.Scan
}

func (m *mockScanRepository) InsertScan(_ context.Context, scan *entities.Scan) error {
	m.scans = append(m.scans, *scan)
	return nil
}

func (m *mockScanRepository) ListScansByBatch(_ context.Context, _ int64) ([]entities.Scan, error) {
	return m.scans, nil
}

// recordingLogger keeps messages for assertions
type recordingLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *recordingLogger) log(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, level+" "+msg)
}

func (l *recordingLogger) Debug(msg string, _ ...interfaces.Field) { l.log("DEBUG", msg) }
func (l *recordingLogger) Info(msg string, _ ...interfaces.Field)  { l.log("INFO", msg) }
func (l *recordingLogger) Warn(msg string, _ ...interfaces.Field)  { l.log("WARN", msg) }
func (l *recordingLogger) Error(msg string, _ ...interfaces.Field) { l.log("ERROR", msg) }

func (l *recordingLogger) contains(substr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.messages {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

// fakeLogSource emits fixed lines then waits for cancellation or fails
type fakeLogSource struct {
	name  string
	lines []string
	err   error
}

func (f *fakeLogSource) Name() string { return f.name }

func (f *fakeLogSource) Stream(ctx context.Context, lines chan<- string) error {
	for _, line := range f.lines {
		select {
		case lines <- line:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if f.err != nil {
		return f.err
	}
	<-ctx.Done()
	return ctx.Err()
}

var _ gateways.ScannerGateway = (*mockScanner)(nil)
var _ gateways.ArtifactStore = (*mockArtifactStore)(nil)
var _ gateways.LogSource = (*fakeLogSource)(nil)
