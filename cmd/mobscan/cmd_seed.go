package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ochairo/mobscan/internal/domain/entities"
	"github.com/ochairo/mobscan/internal/domain/services"
	"github.com/ochairo/mobscan/internal/external-adapters/sqlite"
	"github.com/ochairo/mobscan/internal/external-adapters/yaml"
)

func runSeed(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	var (
		batches  = fs.Int("batches", 5, "Number of batches to create")
		scans    = fs.Int("scans", 8, "Maximum number of scans per batch")
		poolFile = fs.String("pool", "", "YAML file with the app pool (built-in pool when empty)")
		seed     = fs.Int64("seed", 0, "Random seed (0 uses the current time)")
	)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: mobscan seed <db_path> [options]

Generate synthetic batches and scans for dashboard development.
The schema is created when missing.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  mobscan seed mobsf_scans.db
  mobscan seed dev.db --batches 12 --scans 20 --pool apps.yml --seed 42
`)
	}

	parseFlags(fs, args)

	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: database path is required\n\n")
		fs.Usage()
		os.Exit(entities.ExitUsage)
	}

	if *batches < 1 || *scans < 1 {
		fmt.Fprintf(os.Stderr, "Error: --batches and --scans must be positive\n")
		os.Exit(entities.ExitUsage)
	}

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	if err := executeSeed(ctx, fs.Arg(0), *poolFile, *batches, *scans, *seed); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(entities.ExitUnexpected)
	}
}

func executeSeed(ctx context.Context, dbPath, poolFile string, batches, scans int, seed int64) error {
	pool, err := yaml.NewAppPoolRepository(poolFile, services.DefaultAppPool()).ListTemplates(ctx)
	if err != nil {
		return err
	}

	store := sqlite.NewStore(dbPath)
	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}

	result, err := services.NewSeeder(store, store, seed).Seed(ctx, pool, batches, scans)
	if err != nil {
		return err
	}

	fmt.Printf("✅ Created %d batches with %d scans in %s (seed %d)\n", result.Batches, result.Scans, dbPath, seed)
	return nil
}
