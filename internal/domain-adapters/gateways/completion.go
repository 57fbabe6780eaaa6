package gateways

import (
	"context"
	"fmt"

	"github.com/ochairo/mobscan/internal/domain/interfaces/gateways"
)

// synchronousCompletion treats the blocking scan call as the completion signal
type synchronousCompletion struct {
	scanner gateways.ScannerGateway
}

// NewSynchronousCompletion creates a completion strategy that issues one
// blocking scan request and considers the scan done when it returns
func NewSynchronousCompletion(scanner gateways.ScannerGateway) gateways.CompletionStrategy {
	return &synchronousCompletion{scanner: scanner}
}

// AwaitCompletion triggers the scan and waits for the response
func (c *synchronousCompletion) AwaitCompletion(ctx context.Context, scanHash string) error {
	if err := c.scanner.TriggerScan(ctx, scanHash); err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	return nil
}
