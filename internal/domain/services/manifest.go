package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/ochairo/mobscan/internal/domain/entities"
	"github.com/ochairo/mobscan/internal/domain/interfaces/gateways"
)

// ManifestService writes and verifies per-batch artifact manifests
type ManifestService struct {
	checksum gateways.Checksummer
	signer   gateways.ManifestSigner
	verifier gateways.SignatureVerifier
}

// NewManifestService creates a manifest service. signer and verifier may be nil,
// in which case manifests are written unsigned and signatures are not checked.
func NewManifestService(checksum gateways.Checksummer, signer gateways.ManifestSigner, verifier gateways.SignatureVerifier) *ManifestService {
	return &ManifestService{checksum: checksum, signer: signer, verifier: verifier}
}

// Build digests the artifacts referenced by the scans of a batch
func (s *ManifestService) Build(batchID int64, scans []entities.Scan) (*entities.BatchManifest, error) {
	manifest := &entities.BatchManifest{
		BatchID:     batchID,
		GeneratedAt: time.Now().UTC(),
		Entries:     make([]entities.ManifestEntry, 0, len(scans)),
	}

	for _, scan := range scans {
		entry := entities.ManifestEntry{
			AppName:  scan.AppName,
			BundleID: scan.BundleID,
			Platform: string(scan.Platform),
			PDFPath:  scan.PDFPath,
			IconPath: scan.IconPath,
		}

		sum, err := s.checksum.CalculateChecksum(scan.PDFPath)
		if err != nil {
			return nil, fmt.Errorf("failed to digest report of %s: %w", scan.AppName, err)
		}
		entry.PDFSHA256 = sum

		if scan.IconPath != "" {
			sum, err := s.checksum.CalculateChecksum(scan.IconPath)
			if err != nil {
				return nil, fmt.Errorf("failed to digest icon of %s: %w", scan.AppName, err)
			}
			entry.IconSHA256 = sum
		}

		manifest.Entries = append(manifest.Entries, entry)
	}

	return manifest, nil
}

// Write stores the manifest in batchDir and signs it when a signer is configured
func (s *ManifestService) Write(batchDir string, manifest *entities.BatchManifest) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	manifestPath := filepath.Join(batchDir, entities.ManifestFileName)
	if err := os.WriteFile(manifestPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	if s.signer == nil {
		return nil
	}

	var sig bytes.Buffer
	if err := s.signer.SignDetached(bytes.NewReader(data), &sig); err != nil {
		return fmt.Errorf("failed to sign manifest: %w", err)
	}

	sigPath := filepath.Join(batchDir, entities.ManifestSignatureFileName)
	if err := os.WriteFile(sigPath, sig.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write manifest signature: %w", err)
	}

	return nil
}

// Verify checks the manifest signature (when a verifier is configured) and
// every recorded digest. All mismatches are reported together.
func (s *ManifestService) Verify(ctx context.Context, batchDir string) (*entities.BatchManifest, error) {
	manifestPath := filepath.Join(batchDir, entities.ManifestFileName)
	//nolint:gosec // G304: batch directory is derived from configuration
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var manifest entities.BatchManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	var merr *multierror.Error

	if s.verifier != nil {
		sigPath := filepath.Join(batchDir, entities.ManifestSignatureFileName)
		//nolint:gosec // G304: batch directory is derived from configuration
		sig, err := os.ReadFile(sigPath)
		if err != nil {
			merr = multierror.Append(merr, fmt.Errorf("failed to read manifest signature: %w", err))
		} else if err := s.verifier.VerifyDetached(bytes.NewReader(data), bytes.NewReader(sig)); err != nil {
			merr = multierror.Append(merr, fmt.Errorf("manifest signature invalid: %w", err))
		}
	}

	for _, entry := range manifest.Entries {
		if err := s.checksum.VerifyChecksum(ctx, entry.PDFPath, entry.PDFSHA256); err != nil {
			merr = multierror.Append(merr, fmt.Errorf("%s: %w", entry.PDFPath, err))
		}
		if entry.IconPath != "" {
			if err := s.checksum.VerifyChecksum(ctx, entry.IconPath, entry.IconSHA256); err != nil {
				merr = multierror.Append(merr, fmt.Errorf("%s: %w", entry.IconPath, err))
			}
		}
	}

	return &manifest, merr.ErrorOrNil()
}
