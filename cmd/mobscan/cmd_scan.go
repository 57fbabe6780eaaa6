package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/ochairo/mobscan/internal/config"
	"github.com/ochairo/mobscan/internal/domain-adapters/gateways"
	orchestrators "github.com/ochairo/mobscan/internal/domain-orchestrators"
	"github.com/ochairo/mobscan/internal/domain/entities"
	"github.com/ochairo/mobscan/internal/domain/interfaces"
	gatewayifaces "github.com/ochairo/mobscan/internal/domain/interfaces/gateways"
	"github.com/ochairo/mobscan/internal/domain/services"
	"github.com/ochairo/mobscan/internal/external-adapters/gpg"
	"github.com/ochairo/mobscan/internal/external-adapters/sqlite"
	"github.com/ochairo/mobscan/internal/external-adapters/zaplog"
)

func runScan(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: mobscan scan <host> <api_key> <username> <password>

Upload every .apk and .ipa in the scan directory to MobSF, store the
scorecards as a new batch and save icons and PDF reports.

Paths, timeouts and signing come from mobscan.yml, .env and MOBSCAN_* variables.

Exit codes:
  0  all packages scanned
  1  invalid invocation
  2  database file not found
  3  MobSF login failed
  4  no package scanned successfully
  5  some packages failed
  6  unexpected error

Example:
  mobscan scan http://localhost:8000 <api_key> admin secret
`)
	}

	parseFlags(fs, args)

	if fs.NArg() != 4 {
		fmt.Fprintf(os.Stderr, "Error: expected 4 arguments, got %d\n\n", fs.NArg())
		fs.Usage()
		os.Exit(entities.ExitUsage)
	}

	os.Exit(executeScan(ctx, fs.Arg(0), fs.Arg(1), fs.Arg(2), fs.Arg(3)))
}

// executeScan runs one batch and returns the process exit code
func executeScan(ctx context.Context, host, apiKey, username, password string) (code int) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return entities.ExitUnexpected
	}
	cfg.Scanner.Host = host
	cfg.Scanner.APIKey = apiKey
	cfg.Scanner.Username = username
	cfg.Scanner.Password = password

	logger, err := zaplog.New(zaplog.Options{
		Level:    cfg.Logging.Level,
		FilePath: cfg.Paths.LogFile,
		Console:  os.Stdout,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return entities.ExitUnexpected
	}
	//nolint:errcheck // Defer close on log file
	defer logger.Close()

	// checked before any network call
	store := sqlite.NewStore(cfg.Paths.Database)
	if !store.Exists() {
		logger.Error(fmt.Sprintf("Database file %s not found (run \"mobscan init-db\" first)", cfg.Paths.Database))
		return entities.ExitDatabaseMissing
	}

	if err := cfg.ValidateScanner(); err != nil {
		logger.Error("Invalid configuration: " + err.Error())
		return entities.ExitUnexpected
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error(fmt.Sprintf("Unexpected error: %v", r))
			code = entities.ExitUnexpected
		}
	}()

	orch, err := newScanOrchestrator(cfg, store, logger)
	if err != nil {
		logger.Error("Failed to set up scan: " + err.Error())
		return entities.ExitUnexpected
	}

	summary, err := orch.Run(ctx)
	switch {
	case errors.Is(err, gatewayifaces.ErrAuth):
		return entities.ExitAuthFailed
	case errors.Is(err, context.Canceled):
		logger.Error("Scan run interrupted")
		return entities.ExitUnexpected
	case err != nil:
		logger.Error("Scan run failed: " + err.Error())
		return entities.ExitUnexpected
	}

	if code := summary.ExitCode(); code != entities.ExitOK {
		logger.Warn(fmt.Sprintf("Scan finished with exit code %d", code))
		return code
	}
	return entities.ExitOK
}

func newScanOrchestrator(cfg *config.Config, store *sqlite.Store, logger interfaces.Logger) (*orchestrators.ScanOrchestrator, error) {
	scanner, err := gateways.NewMobSFGateway(gateways.MobSFConfig{
		BaseURL:        cfg.Scanner.Host,
		APIKey:         cfg.Scanner.APIKey,
		Username:       cfg.Scanner.Username,
		Password:       cfg.Scanner.Password,
		RequestTimeout: cfg.Scanner.RequestTimeout,
		UploadTimeout:  cfg.Scanner.UploadTimeout,
		ScanTimeout:    cfg.Scanner.ScanTimeout,
	}, logger)
	if err != nil {
		return nil, err
	}

	manifests, err := newManifestService(cfg)
	if err != nil {
		return nil, err
	}

	artifacts := gateways.NewFileArtifactStore(cfg.Paths.ReportsDir)
	processor := orchestrators.NewAppProcessor(
		scanner,
		gateways.NewSynchronousCompletion(scanner),
		artifacts,
		services.NewScanRecorder(store, logger),
		logger,
	)

	return orchestrators.NewScanOrchestrator(
		scanner,
		services.NewBatchManager(store, artifacts, logger),
		processor,
		store,
		manifests,
		orchestrators.ScanOrchestratorConfig{ScanDir: cfg.Paths.ScanDir},
		logger,
	), nil
}

// newManifestService signs manifests when a private key is configured
func newManifestService(cfg *config.Config) (*services.ManifestService, error) {
	checksum := gateways.NewChecksumGateway()
	if cfg.Signing.KeyPath == "" {
		return services.NewManifestService(checksum, nil, nil), nil
	}

	signer, err := gpg.NewSigner(cfg.Signing.KeyPath, []byte(cfg.Signing.Passphrase))
	if err != nil {
		return nil, fmt.Errorf("failed to load signing key: %w", err)
	}
	return services.NewManifestService(checksum, signer, nil), nil
}
