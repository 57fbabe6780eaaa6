package gateways

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// checksumGateway computes SHA-256 digests of stored artifacts
type checksumGateway struct{}

// NewChecksumGateway creates a new checksum gateway
//
//nolint:revive // unexported-return: Intentionally returns concrete type for testability
func NewChecksumGateway() *checksumGateway {
	return &checksumGateway{}
}

// CalculateChecksum returns the hex SHA-256 of a file
func (c *checksumGateway) CalculateChecksum(filePath string) (string, error) {
	//nolint:gosec // G304: artifact paths come from recorded scans
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash file: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// VerifyChecksum compares a file's digest with the expected value
func (c *checksumGateway) VerifyChecksum(ctx context.Context, filePath, expectedSum string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	actualSum, err := c.CalculateChecksum(filePath)
	if err != nil {
		return err
	}
	if actualSum != expectedSum {
		return fmt.Errorf("checksum mismatch: expected %s, got %s", expectedSum, actualSum)
	}
	return nil
}
