package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ochairo/mobscan/internal/config"
	"github.com/ochairo/mobscan/internal/domain-adapters/gateways"
	orchestrators "github.com/ochairo/mobscan/internal/domain-orchestrators"
	"github.com/ochairo/mobscan/internal/domain/entities"
	"github.com/ochairo/mobscan/internal/external-adapters/httpapi"
	"github.com/ochairo/mobscan/internal/external-adapters/sqlite"
	"github.com/ochairo/mobscan/internal/external-adapters/zaplog"
)

func runServe(ctx context.Context, args []string) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(entities.ExitUnexpected)
	}

	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", cfg.Server.Addr, "Listen address")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: mobscan serve [options]

Serve the dashboard API, stored reports and the live log stream
(scan log file and the MobSF container logs).

Options:
`)
		fs.PrintDefaults()
	}

	parseFlags(fs, args)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid configuration: %v\n", err)
		os.Exit(entities.ExitUnexpected)
	}

	store := sqlite.NewStore(cfg.Paths.Database)
	if !store.Exists() {
		fmt.Fprintf(os.Stderr, "Error: database file %s not found (run \"mobscan init-db\" first)\n", cfg.Paths.Database)
		os.Exit(entities.ExitDatabaseMissing)
	}

	// console only: the scan log file is itself one of the streamed sources
	logger, err := zaplog.New(zaplog.Options{Level: cfg.Logging.Level, Console: os.Stdout})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(entities.ExitUnexpected)
	}
	//nolint:errcheck // Defer sync of console logger
	defer logger.Close()
	restore := zap.ReplaceGlobals(logger.Zap())
	defer restore()

	logs := orchestrators.NewLogMultiplexer(logger,
		gateways.NewFileLogSource(entities.LogSourceScan, cfg.Paths.LogFile, cfg.Server.LogBacklog),
		gateways.NewDockerLogSource(entities.LogSourceDocker, cfg.Server.DockerContainer, cfg.Server.LogBacklog),
	)

	engine := httpapi.NewEngine(httpapi.Dependencies{
		Batches:   store,
		Scans:     store,
		Dashboard: store,
		Files:     gateways.NewFileArtifactStore(cfg.Paths.ReportsDir),
		Logs:      logs,
		Trigger: gateways.NewJenkinsGateway(gateways.JenkinsConfig{
			URL:      cfg.Jenkins.URL,
			User:     cfg.Jenkins.User,
			APIToken: cfg.Jenkins.APIToken,
			Job:      cfg.Jenkins.Job,
			JobToken: cfg.Jenkins.JobToken,
		}),
		UploadDir: cfg.Paths.UploadDir,
	})

	if err := httpapi.Run(ctx, *addr, engine); err != nil {
		logger.Error(err.Error())
		os.Exit(entities.ExitUnexpected)
	}
}
