package uniguard

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel/metric"

	"github.com/zero-day-ai/uniguard/auditlog"
	"github.com/zero-day-ai/uniguard/config"
	"github.com/zero-day-ai/uniguard/health"
	"github.com/zero-day-ai/uniguard/supervisor"
	"github.com/zero-day-ai/uniguard/types"
	"github.com/zero-day-ai/uniguard/worker"
)

// Auditor wires the audit log, the check battery and the supervisor
// together. It serves both sides of a cycle: RunCycle in the supervisor
// process and RunWorker in the worker process.
type Auditor struct {
	cfg        *config.Config
	log        *auditlog.Logger
	steps      []health.Step
	console    io.Writer
	diag       *slog.Logger
	meter      metric.Meter
	supervisor *supervisor.Supervisor
}

// New creates an Auditor from cfg, which defaults to config.Default() when
// nil. The configuration is validated; an invalid one yields an error
// matching ErrInvalidConfig.
func New(cfg *config.Config, opts ...Option) (*Auditor, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, wrapError(err)
	}

	c := &auditorConfig{}
	for _, opt := range opts {
		opt(c)
	}

	console := io.Writer(os.Stdout)
	if c.consoleSet {
		console = c.console
	}
	diag := c.logger
	if diag == nil {
		diag = NewDiagnosticsLogger(cfg.Diagnostics, os.Stderr)
	}

	a := &Auditor{
		cfg:     cfg,
		console: console,
		diag:    diag,
		meter:   c.meter,
	}
	a.log = auditlog.New(cfg.Log.Path,
		auditlog.WithConsole(console),
		auditlog.WithDiagnostics(diag))
	a.steps = health.WithChecks(health.DefaultBattery(cfg, console), c.checks)

	var spawner supervisor.Spawner
	switch {
	case c.inProcess:
		spawner = supervisor.FuncSpawner{Run: func(ctx context.Context, req supervisor.Request) int {
			return a.runWorker(ctx, req.CycleID, req.RunID)
		}}
	case c.spawner != nil:
		spawner = c.spawner
	default:
		spawner = supervisor.ProcessSpawner{Timeout: cfg.Worker.GetTimeout()}
	}

	sup, err := supervisor.New(a.log, spawner,
		supervisor.WithLogger(diag),
		supervisor.WithTracer(c.tracer))
	if err != nil {
		return nil, fmt.Errorf("create supervisor: %w", err)
	}
	a.supervisor = sup

	return a, nil
}

// Config returns the validated configuration.
func (a *Auditor) Config() *config.Config {
	return a.cfg
}

// LogPath returns the audit log file path.
func (a *Auditor) LogPath() string {
	return a.log.Path()
}

// RunCycle runs one audit cycle and blocks until it has completed.
// An empty id means MANUAL. The error is non-nil only when the audit log is
// unwritable, in which case it matches ErrLoggingFailed.
func (a *Auditor) RunCycle(ctx context.Context, id string) (types.ExitClassification, error) {
	class, err := a.supervisor.RunCycle(ctx, id)
	return class, wrapError(err)
}

// LastClassification returns the classification of the most recent cycle.
func (a *Auditor) LastClassification() types.ExitClassification {
	return a.supervisor.LastClassification()
}

// RunWorker is the worker entry point. It runs the check battery once and
// returns the exit code for the worker process. The run ID is taken from the
// environment set by the supervisor.
func (a *Auditor) RunWorker(ctx context.Context, id string) int {
	if id == "" {
		id = config.DefaultCycleID
	}
	return a.runWorker(ctx, id, os.Getenv(worker.RunIDEnv))
}

func (a *Auditor) runWorker(ctx context.Context, cycleID, runID string) int {
	opts := []health.RunnerOption{
		health.WithConsole(a.console),
		health.WithLogger(a.diag),
	}
	if a.meter != nil {
		opts = append(opts, health.WithMeter(a.meter))
	}

	runner, err := health.NewRunner(a.log, a.steps, opts...)
	if err != nil {
		a.diag.ErrorContext(ctx, "cannot build check runner", "error", err)
		return worker.ExitLoggingFailure
	}

	return worker.Run(ctx, worker.Options{
		Log:     a.log,
		Runner:  runner,
		Logger:  a.diag,
		CycleID: cycleID,
		RunID:   runID,
	})
}

// ReadLog parses the audit log written so far.
func (a *Auditor) ReadLog() ([]auditlog.Entry, error) {
	f, err := os.Open(a.log.Path())
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	defer CloseWithLog(f, a.diag, "audit log")
	return auditlog.ReadEntries(f)
}

// NewDiagnosticsLogger builds the slog logger described by cfg, writing to w.
// Unknown levels fall back to warn.
func NewDiagnosticsLogger(cfg config.DiagnosticsConfig, w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if cfg.Level != "" {
		var parsed slog.Level
		if err := parsed.UnmarshalText([]byte(strings.TrimSpace(cfg.Level))); err == nil {
			level = parsed
		}
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(w, handlerOpts))
	}
	return slog.New(slog.NewJSONHandler(w, handlerOpts))
}
