package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ochairo/mobscan/internal/config"
	"github.com/ochairo/mobscan/internal/domain-adapters/gateways"
	"github.com/ochairo/mobscan/internal/domain/entities"
	"github.com/ochairo/mobscan/internal/domain/services"
	"github.com/ochairo/mobscan/internal/external-adapters/sqlite"
	"github.com/ochairo/mobscan/internal/external-adapters/zaplog"
)

func runReset(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)
	yes := fs.Bool("yes", false, "Skip the confirmation prompt")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: mobscan reset [options]

Delete every batch and scan row and remove all batch_* directories
from the reports directory.

Options:
`)
		fs.PrintDefaults()
	}

	parseFlags(fs, args)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(entities.ExitUnexpected)
	}

	fmt.Println("Warning: This will clear all data from the database and remove all batch folders.")
	if !*yes && !confirm(os.Stdin, os.Stdout) {
		fmt.Println("Operation cancelled.")
		return
	}

	if err := executeReset(ctx, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(entities.ExitUnexpected)
	}
	fmt.Println("Clean-up completed successfully.")
}

// confirm asks for an explicit "yes"
func confirm(in io.Reader, out io.Writer) bool {
	fmt.Fprint(out, "Are you sure you want to proceed? (yes/no): ")
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(answer), "yes")
}

func executeReset(ctx context.Context, cfg *config.Config) error {
	store := sqlite.NewStore(cfg.Paths.Database)
	if !store.Exists() {
		return fmt.Errorf("database file %s not found", cfg.Paths.Database)
	}

	logger, err := zaplog.New(zaplog.Options{Level: cfg.Logging.Level, Console: os.Stdout})
	if err != nil {
		return err
	}
	//nolint:errcheck // Defer sync of console logger
	defer logger.Close()

	// the resetter logs each step that actually succeeded
	_, err = services.NewResetter(store, gateways.NewFileArtifactStore(cfg.Paths.ReportsDir), logger).Reset(ctx)
	return err
}
