package entities

import "time"

// Process exit codes of the scan command
const (
	ExitOK              = 0
	ExitUsage           = 1
	ExitDatabaseMissing = 2
	ExitAuthFailed      = 3
	ExitNoSuccess       = 4
	ExitPartialFailure  = 5
	ExitUnexpected      = 6
)

// RunSummary tallies one orchestrator run
type RunSummary struct {
	BatchID   int64
	BatchDir  string
	Succeeded int
	Failed    int
	Skipped   int
	Duration  time.Duration
}

// ExitCode maps the tally to the process exit status.
// Zero successes wins over any failure count.
func (r *RunSummary) ExitCode() int {
	switch {
	case r.Succeeded == 0:
		return ExitNoSuccess
	case r.Failed > 0:
		return ExitPartialFailure
	default:
		return ExitOK
	}
}
