package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/ochairo/mobscan/internal/config"
	"github.com/ochairo/mobscan/internal/domain/entities"
	"github.com/ochairo/mobscan/internal/external-adapters/sqlite"
)

func runInitDB(ctx context.Context, args []string) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(entities.ExitUnexpected)
	}

	fs := flag.NewFlagSet("init-db", flag.ContinueOnError)
	dbPath := fs.String("db", cfg.Paths.Database, "Path to the SQLite database")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: mobscan init-db [options]

Create the batches and scans tables. Existing data is kept.

Options:
`)
		fs.PrintDefaults()
	}

	parseFlags(fs, args)

	if err := sqlite.NewStore(*dbPath).EnsureSchema(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(entities.ExitUnexpected)
	}
	fmt.Printf("✅ Database ready: %s\n", *dbPath)
}
