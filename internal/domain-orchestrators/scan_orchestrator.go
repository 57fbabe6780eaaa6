// Package orchestrators coordinates the batch scan workflow and the log stream.
package orchestrators

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ochairo/mobscan/internal/domain/entities"
	"github.com/ochairo/mobscan/internal/domain/interfaces"
	"github.com/ochairo/mobscan/internal/domain/interfaces/repositories"
	"github.com/ochairo/mobscan/internal/domain/interfaces/services"
)

// Authenticator opens the scanner session used for the whole run
type Authenticator interface {
	Authenticate(ctx context.Context) error
}

// PackageProcessor handles one package file
type PackageProcessor interface {
	ProcessApp(ctx context.Context, filePath string, batchID int64, outputDir string) bool
}

// ManifestWriter records the artifacts of a finished batch
type ManifestWriter interface {
	Build(batchID int64, scans []entities.Scan) (*entities.BatchManifest, error)
	Write(batchDir string, manifest *entities.BatchManifest) error
}

// ScanOrchestrator coordinates one batch run over the scan directory
type ScanOrchestrator struct {
	auth      Authenticator
	batches   services.BatchManager
	processor PackageProcessor
	scans     repositories.ScanRepository
	manifests ManifestWriter
	scanDir   string
	logger    interfaces.Logger
}

// ScanOrchestratorConfig holds configuration for the orchestrator
type ScanOrchestratorConfig struct {
	ScanDir string
}

// NewScanOrchestrator creates a new scan orchestrator.
// scans and manifests may be nil, in which case no manifest is written.
func NewScanOrchestrator(
	auth Authenticator,
	batches services.BatchManager,
	processor PackageProcessor,
	scans repositories.ScanRepository,
	manifests ManifestWriter,
	config ScanOrchestratorConfig,
	logger interfaces.Logger,
) *ScanOrchestrator {
	return &ScanOrchestrator{
		auth:      auth,
		batches:   batches,
		processor: processor,
		scans:     scans,
		manifests: manifests,
		scanDir:   config.ScanDir,
		logger:    logger,
	}
}

// Run authenticates, creates the batch and processes every .apk and .ipa file
// directly inside the scan directory, one at a time.
// Authentication errors wrap gateways.ErrAuth.
func (o *ScanOrchestrator) Run(ctx context.Context) (*entities.RunSummary, error) {
	startTime := time.Now()
	o.logger.Info("Starting scan run", interfaces.F("scan_dir", o.scanDir))

	if err := o.auth.Authenticate(ctx); err != nil {
		o.logger.Error("Authentication failed: " + err.Error())
		return nil, fmt.Errorf("authentication failed: %w", err)
	}
	o.logger.Info("Authenticated with scanner")

	batchID, batchDir, err := o.batches.CreateBatch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create batch: %w", err)
	}
	summary := &entities.RunSummary{BatchID: batchID, BatchDir: batchDir}
	o.logger.Info(fmt.Sprintf("Created batch %d", batchID), interfaces.F("dir", batchDir))

	entries, err := os.ReadDir(o.scanDir)
	if err != nil {
		return summary, fmt.Errorf("failed to read scan directory: %w", err)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			o.logger.Warn("Scan run interrupted")
			summary.Duration = time.Since(startTime)
			return summary, err
		}

		if entry.IsDir() || !entities.IsScannablePackage(entry.Name()) {
			o.logger.Debug("Skipping " + entry.Name())
			summary.Skipped++
			continue
		}

		if o.processor.ProcessApp(ctx, filepath.Join(o.scanDir, entry.Name()), batchID, batchDir) {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}

	o.writeManifest(ctx, summary)

	summary.Duration = time.Since(startTime)
	o.logger.Info(fmt.Sprintf("Batch %d complete: %d succeeded, %d failed, %d skipped",
		batchID, summary.Succeeded, summary.Failed, summary.Skipped),
		interfaces.F("duration", summary.Duration.String()))

	return summary, nil
}

// writeManifest is best effort; failures are logged only
func (o *ScanOrchestrator) writeManifest(ctx context.Context, summary *entities.RunSummary) {
	if o.manifests == nil || o.scans == nil {
		return
	}

	scans, err := o.scans.ListScansByBatch(ctx, summary.BatchID)
	if err != nil {
		o.logger.Warn("Failed to load scans for manifest: " + err.Error())
		return
	}

	manifest, err := o.manifests.Build(summary.BatchID, scans)
	if err != nil {
		o.logger.Warn("Failed to build manifest: " + err.Error())
		return
	}

	if err := o.manifests.Write(summary.BatchDir, manifest); err != nil {
		o.logger.Warn("Failed to write manifest: " + err.Error())
		return
	}
	o.logger.Debug("Manifest written", interfaces.F("entries", len(manifest.Entries)))
}
