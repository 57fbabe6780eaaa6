package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ochairo/mobscan/internal/config"
	"github.com/ochairo/mobscan/internal/domain-adapters/gateways"
	"github.com/ochairo/mobscan/internal/domain/entities"
	"github.com/ochairo/mobscan/internal/domain/services"
	"github.com/ochairo/mobscan/internal/external-adapters/gpg"
)

func runVerifyBatch(ctx context.Context, args []string) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(entities.ExitUnexpected)
	}

	fs := flag.NewFlagSet("verify-batch", flag.ContinueOnError)
	keyPath := fs.String("key", cfg.Signing.PublicKeyPath, "Public key for the manifest signature (checksums only when empty)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: mobscan verify-batch <batch_id> [options]

Recompute the SHA-256 of every report and icon listed in the batch
manifest and check the detached manifest signature.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  mobscan verify-batch 12
  mobscan verify-batch 12 --key signing-key.pub.asc
`)
	}

	parseFlags(fs, args)

	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: batch id is required\n\n")
		fs.Usage()
		os.Exit(entities.ExitUsage)
	}

	batchID, err := strconv.ParseInt(fs.Arg(0), 10, 64)
	if err != nil || batchID < 1 {
		fmt.Fprintf(os.Stderr, "Error: invalid batch id %q\n", fs.Arg(0))
		os.Exit(entities.ExitUsage)
	}

	batchDir := filepath.Join(cfg.Paths.ReportsDir, entities.BatchDirName(batchID))
	if err := executeVerifyBatch(ctx, batchDir, *keyPath); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Verification FAILED: %v\n", err)
		os.Exit(1)
	}
}

func executeVerifyBatch(ctx context.Context, batchDir, keyPath string) error {
	var manifests *services.ManifestService
	if keyPath == "" {
		manifests = services.NewManifestService(gateways.NewChecksumGateway(), nil, nil)
	} else {
		verifier := gpg.NewVerifier()
		if err := verifier.ImportKeyFromFile(keyPath); err != nil {
			return err
		}
		manifests = services.NewManifestService(gateways.NewChecksumGateway(), nil, verifier)
	}

	fmt.Printf("🔍 Verifying %s\n", batchDir)
	manifest, err := manifests.Verify(ctx, batchDir)
	if err != nil {
		return err
	}

	if keyPath != "" {
		fmt.Printf("✅ Manifest signature verified\n")
	}
	fmt.Printf("✅ %d entries verified\n", len(manifest.Entries))
	return nil
}
