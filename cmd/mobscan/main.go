// Package main provides the mobscan CLI for batch mobile application security scanning.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ochairo/mobscan/internal/domain/entities"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(entities.ExitUsage)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	command := os.Args[1]

	// Dispatch to subcommand
	switch command {
	case "scan":
		runScan(ctx, os.Args[2:])
	case "serve":
		runServe(ctx, os.Args[2:])
	case "seed":
		runSeed(ctx, os.Args[2:])
	case "reset":
		runReset(ctx, os.Args[2:])
	case "init-db":
		runInitDB(ctx, os.Args[2:])
	case "verify-batch":
		runVerifyBatch(ctx, os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(entities.ExitUsage)
	}
}

// parseFlags parses subcommand flags. Help exits 0 and any other flag error
// exits with the usage code; the flag set has already printed the problem.
func parseFlags(fs *flag.FlagSet, args []string) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(entities.ExitOK)
		}
		os.Exit(entities.ExitUsage)
	}
}

func printUsage() {
	fmt.Println(`mobscan - Batch mobile application security scanning

Usage:
  mobscan <command> [options]

Commands:
  scan          Scan every .apk and .ipa in the scan directory as a new batch
  serve         Run the dashboard API and live log stream
  seed          Fill a database with synthetic batches for dashboard development
  reset         Delete all scan data and batch report directories
  init-db       Create the database schema
  verify-batch  Verify the manifest checksums and signature of a batch

Use "mobscan <command> --help" for more information about a command.`)
}
