package worker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/zero-day-ai/uniguard/auditlog"
	"github.com/zero-day-ai/uniguard/health"
	"github.com/zero-day-ai/uniguard/types"
)

// RunIDEnv is the environment variable carrying the supervisor's run ID into
// a worker process.
const RunIDEnv = "UNIGUARD_RUN_ID"

// Worker exit codes.
const (
	// ExitOK means the battery ran to completion.
	ExitOK = 0

	// ExitLoggingFailure means an audit line could not be written.
	ExitLoggingFailure = 1
)

// StartMessage is the first audit line a worker writes.
const StartMessage = "Child process started - performing detailed system checks"

// Battery runs the check battery. *health.Runner implements it.
type Battery interface {
	Run(ctx context.Context) (health.Report, error)
}

// Options configures a worker run.
type Options struct {
	// Log is the audit recorder (required).
	Log auditlog.Recorder

	// Runner executes the check battery (required).
	Runner Battery

	// Logger is the diagnostics logger.
	// If nil, diagnostics are discarded.
	Logger *slog.Logger

	// CycleID is the audit cycle this worker belongs to.
	CycleID string

	// RunID correlates the worker with its supervisor.
	// If empty, a fresh one is generated.
	RunID string
}

// Run performs one worker pass and returns the process exit code.
func Run(ctx context.Context, opts Options) int {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.RunID == "" {
		opts.RunID = uuid.New().String()
	}
	logger = logger.With(
		"component", "worker",
		"cycle_id", opts.CycleID,
		"run_id", opts.RunID,
		"worker_id", generateWorkerID(opts.RunID),
	)

	if opts.Log == nil || opts.Runner == nil {
		logger.ErrorContext(ctx, "worker misconfigured",
			"has_log", opts.Log != nil,
			"has_runner", opts.Runner != nil)
		return ExitLoggingFailure
	}

	logger.DebugContext(ctx, "worker starting")

	if err := opts.Log.Record(ctx, StartMessage, types.LevelInfo); err != nil {
		logger.ErrorContext(ctx, "failed to record worker start", "error", err)
		return ExitLoggingFailure
	}

	report, err := opts.Runner.Run(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "battery aborted",
			"completed", len(report.Outcomes),
			"error", err)
		return ExitLoggingFailure
	}

	status := types.Assess(report.Outcomes)
	if status.IsHealthy() {
		logger.DebugContext(ctx, "worker finished", "health", status.String())
	} else {
		logger.WarnContext(ctx, "worker finished", "health", status.String())
	}

	return ExitOK
}

// generateWorkerID identifies this worker instance in diagnostics.
// Uses hostname + PID + a run ID prefix.
func generateWorkerID(runID string) string {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	if len(runID) > 8 {
		runID = runID[:8]
	}

	return fmt.Sprintf("%s-%d-%s", hostname, os.Getpid(), runID)
}
