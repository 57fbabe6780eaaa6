// Package gateways defines interfaces for external systems the domain talks to.
package gateways

import (
	"context"
	"errors"
	"io"

	"github.com/ochairo/mobscan/internal/domain/entities"
)

var (
	// ErrAuth is returned when the scanning service rejects the login
	ErrAuth = errors.New("authentication failed")

	// ErrNotFound is returned when the scanning service has no such resource
	ErrNotFound = errors.New("resource not found")
)

// ScannerGateway is an authenticated session against the scanning service
type ScannerGateway interface {
	// Authenticate performs the form login; it must succeed before other calls
	Authenticate(ctx context.Context) error

	// Upload sends a package and returns the opaque scan hash
	Upload(ctx context.Context, filePath string) (string, error)

	// TriggerScan runs the scan for a hash; the call returns once the scan is done
	TriggerScan(ctx context.Context, scanHash string) error

	// Scorecard fetches the structured findings summary for a hash
	Scorecard(ctx context.Context, scanHash string) (*entities.Scorecard, error)

	// DownloadIcon streams the app icon into w; ErrNotFound when the service has none
	DownloadIcon(ctx context.Context, scanHash string, w io.Writer) error

	// DownloadPDF streams the PDF report into w
	DownloadPDF(ctx context.Context, scanHash string, w io.Writer) error
}

// CompletionStrategy waits until the service has finished scanning an upload
type CompletionStrategy interface {
	AwaitCompletion(ctx context.Context, scanHash string) error
}

// ArtifactStore manages the on-disk artifacts of a batch
type ArtifactStore interface {
	// PrepareBatchDir creates the batch directory tree; existing directories are fine
	PrepareBatchDir(batchID int64) (string, error)

	// Create opens a new artifact file for writing
	Create(path string) (io.WriteCloser, error)

	// Remove deletes a partially written artifact
	Remove(path string) error

	// RemoveBatchDirs deletes every batch directory and returns the removed names
	RemoveBatchDirs() ([]string, error)
}

// LogSource produces log lines for the dashboard stream
type LogSource interface {
	// Name is the source label attached to each event
	Name() string

	// Stream sends lines until ctx is done or the source ends
	Stream(ctx context.Context, lines chan<- string) error
}

// BuildTrigger starts a scan job on the CI server
type BuildTrigger interface {
	TriggerScanJob(ctx context.Context) error
}

// Checksummer computes and checks artifact digests
type Checksummer interface {
	CalculateChecksum(filePath string) (string, error)
	VerifyChecksum(ctx context.Context, filePath, expectedSum string) error
}

// ManifestSigner produces a detached armored signature of a message
type ManifestSigner interface {
	SignDetached(message io.Reader, signature io.Writer) error
}

// SignatureVerifier checks a detached signature against a message
type SignatureVerifier interface {
	VerifyDetached(message, signature io.Reader) error
}
