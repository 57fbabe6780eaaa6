package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/ochairo/mobscan/internal/domain/entities"
	"github.com/ochairo/mobscan/internal/domain/interfaces"
	"github.com/ochairo/mobscan/internal/domain/interfaces/gateways"
	"github.com/ochairo/mobscan/internal/domain/interfaces/services"
)

// AppProcessor runs the upload, scan, scorecard, artifact and persistence steps
// for a single package
type AppProcessor struct {
	scanner    gateways.ScannerGateway
	completion gateways.CompletionStrategy
	store      gateways.ArtifactStore
	recorder   services.ScanRecorder
	logger     interfaces.Logger
	now        func() time.Time
}

// NewAppProcessor creates a new app processor
func NewAppProcessor(
	scanner gateways.ScannerGateway,
	completion gateways.CompletionStrategy,
	store gateways.ArtifactStore,
	recorder services.ScanRecorder,
	logger interfaces.Logger,
) *AppProcessor {
	return &AppProcessor{
		scanner:    scanner,
		completion: completion,
		store:      store,
		recorder:   recorder,
		logger:     logger,
		now:        time.Now,
	}
}

// ProcessApp reports whether the package was scanned and recorded.
// Every failure, including a panic in a step, is logged and reported as false.
func (p *AppProcessor) ProcessApp(ctx context.Context, filePath string, batchID int64, outputDir string) (ok bool) {
	name := entities.PackageName(filePath)

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error(fmt.Sprintf("Unexpected error processing %s: %v", name, r), interfaces.F("file", name))
			ok = false
		}
	}()

	if err := p.process(ctx, filePath, batchID, outputDir); err != nil {
		p.logger.Error(fmt.Sprintf("Failed to process %s: %v", name, err), interfaces.F("file", name))
		return false
	}

	p.logger.Info("Scan completed successfully for "+name, interfaces.F("file", name))
	return true
}

func (p *AppProcessor) process(ctx context.Context, filePath string, batchID int64, outputDir string) error {
	name := entities.PackageName(filePath)
	p.logger.Info("Processing "+name, interfaces.F("batch_id", batchID))

	// Step 1: Upload
	scanHash, err := p.scanner.Upload(ctx, filePath)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	p.logger.Debug("Upload complete", interfaces.F("file", name), interfaces.F("hash", scanHash))

	// Step 2: Scan
	if err := p.completion.AwaitCompletion(ctx, scanHash); err != nil {
		return err
	}

	// Step 3: Scorecard
	scorecard, err := p.scanner.Scorecard(ctx, scanHash)
	if err != nil {
		return fmt.Errorf("failed to fetch scorecard: %w", err)
	}
	summary, err := scorecard.Summary()
	if err != nil {
		return fmt.Errorf("invalid scorecard: %w", err)
	}

	// Step 4: Icon, best effort
	iconPath := filepath.Join(outputDir, entities.IconsDirName, entities.IconFileName(summary.AppName, scanHash))
	if err := p.saveArtifact(iconPath, func(w io.Writer) error {
		return p.scanner.DownloadIcon(ctx, scanHash, w)
	}); err != nil {
		if errors.Is(err, gateways.ErrNotFound) {
			p.logger.Warn("Icon not found for "+name, interfaces.F("hash", scanHash))
		} else {
			p.logger.Warn(fmt.Sprintf("Failed to download icon for %s: %v", name, err))
		}
		iconPath = ""
	}

	// Step 5: PDF report
	pdfPath := filepath.Join(outputDir, entities.ReportsDirName, entities.ReportFileName(summary.AppName, scanHash))
	if err := p.saveArtifact(pdfPath, func(w io.Writer) error {
		return p.scanner.DownloadPDF(ctx, scanHash, w)
	}); err != nil {
		return fmt.Errorf("failed to download pdf report: %w", err)
	}

	// Step 6: Persist
	scan := &entities.Scan{
		BatchID:         batchID,
		ScanDate:        p.now(),
		AppName:         summary.AppName,
		BundleID:        summary.BundleID,
		Version:         summary.Version,
		Platform:        entities.PlatformFromPath(filePath),
		SecurityScore:   summary.SecurityScore,
		HighFindings:    summary.HighFindings,
		WarningFindings: summary.WarningFindings,
		InfoFindings:    summary.InfoFindings,
		SecureFindings:  summary.SecureFindings,
		IconPath:        iconPath,
		PDFPath:         pdfPath,
	}
	if !p.recorder.Record(ctx, scan) {
		return fmt.Errorf("failed to store scan result")
	}

	return nil
}

// saveArtifact writes a downloaded artifact; a partial file is removed on error
func (p *AppProcessor) saveArtifact(path string, fetch func(w io.Writer) error) error {
	w, err := p.store.Create(path)
	if err != nil {
		return err
	}

	if err := fetch(w); err != nil {
		_ = w.Close()
		_ = p.store.Remove(path)
		return err
	}

	if err := w.Close(); err != nil {
		_ = p.store.Remove(path)
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}
