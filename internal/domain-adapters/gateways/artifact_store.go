package gateways

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/ochairo/mobscan/internal/domain/entities"
)

// FileArtifactStore keeps batch artifacts under a reports base directory
type FileArtifactStore struct {
	baseDir string
}

// NewFileArtifactStore creates a store rooted at baseDir
func NewFileArtifactStore(baseDir string) *FileArtifactStore {
	return &FileArtifactStore{baseDir: baseDir}
}

// BaseDir returns the reports base directory
func (s *FileArtifactStore) BaseDir() string {
	return s.baseDir
}

// PrepareBatchDir creates <base>/batch_<id>/{reports,icons}.
// Calling it again for the same batch is not an error.
func (s *FileArtifactStore) PrepareBatchDir(batchID int64) (string, error) {
	batchDir := filepath.Join(s.baseDir, entities.BatchDirName(batchID))

	for _, sub := range []string{entities.ReportsDirName, entities.IconsDirName} {
		if err := os.MkdirAll(filepath.Join(batchDir, sub), 0750); err != nil {
			return "", fmt.Errorf("failed to create %s directory: %w", sub, err)
		}
	}

	return batchDir, nil
}

// Create opens path for writing, truncating any previous content.
// Paths outside the base directory are rejected.
func (s *FileArtifactStore) Create(path string) (io.WriteCloser, error) {
	if err := s.within(path); err != nil {
		return nil, err
	}

	//nolint:gosec // G304: path is checked against the base directory above
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0640)
	if err != nil {
		return nil, fmt.Errorf("failed to create artifact: %w", err)
	}
	return f, nil
}

// Remove deletes an artifact; a missing file is not an error
func (s *FileArtifactStore) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove artifact: %w", err)
	}
	return nil
}

// RemoveBatchDirs deletes every batch_* directory directly under the base.
// Other entries are left alone. A missing base directory removes nothing.
func (s *FileArtifactStore) RemoveBatchDirs() ([]string, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read reports directory: %w", err)
	}

	var (
		removed []string
		merr    *multierror.Error
	)
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), "batch_") {
			continue
		}
		if err := os.RemoveAll(filepath.Join(s.baseDir, entry.Name())); err != nil {
			merr = multierror.Append(merr, fmt.Errorf("failed to remove %s: %w", entry.Name(), err))
			continue
		}
		removed = append(removed, entry.Name())
	}

	sort.Strings(removed)
	return removed, merr.ErrorOrNil()
}

// ResolveFile maps a path relative to the base directory to a file on disk.
// Paths escaping the base directory are rejected.
func (s *FileArtifactStore) ResolveFile(rel string) (string, error) {
	base, err := filepath.Abs(s.baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve reports directory: %w", err)
	}

	full := filepath.Join(base, filepath.FromSlash(strings.TrimPrefix(rel, "/")))
	if !isWithin(base, full) {
		return "", fmt.Errorf("path %q escapes reports directory", rel)
	}
	return full, nil
}

func (s *FileArtifactStore) within(path string) error {
	base, err := filepath.Abs(s.baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve reports directory: %w", err)
	}
	full, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve artifact path: %w", err)
	}
	if full == base || !isWithin(base, full) {
		return fmt.Errorf("artifact path %q escapes reports directory", path)
	}
	return nil
}

func isWithin(base, full string) bool {
	return full == base || strings.HasPrefix(full, base+string(filepath.Separator))
}
