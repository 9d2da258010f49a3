package supervisor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zero-day-ai/uniguard/auditerr"
	"github.com/zero-day-ai/uniguard/auditlog"
	"github.com/zero-day-ai/uniguard/config"
	"github.com/zero-day-ai/uniguard/types"
)

const instrumentationName = "github.com/zero-day-ai/uniguard/supervisor"

// SpanName is the name of the span covering one audit cycle.
const SpanName = "uniguard.cycle"

// Audit messages written by the supervisor.
const (
	MonitoringMessage   = "Parent process monitoring child execution"
	SpawnFailedMessage  = "Fork operation failed - cannot create child process"
	AbnormalExitMessage = "Child process terminated abnormally"
)

// Supervisor runs audit cycles. It is safe for concurrent use, although
// cycles are normally run one at a time.
type Supervisor struct {
	log      auditlog.Recorder
	spawner  Spawner
	diag     *slog.Logger
	tracer   trace.Tracer
	newRunID func() string

	mu   sync.RWMutex
	last types.ExitClassification
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithLogger sets the diagnostics logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Supervisor) {
		if logger != nil {
			s.diag = logger
		}
	}
}

// WithTracer sets the tracer used for cycle spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Supervisor) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithRunID overrides run ID generation.
func WithRunID(fn func() string) Option {
	return func(s *Supervisor) {
		if fn != nil {
			s.newRunID = fn
		}
	}
}

// New creates a supervisor that records to log and starts workers with
// spawner.
func New(log auditlog.Recorder, spawner Spawner, opts ...Option) (*Supervisor, error) {
	if log == nil {
		return nil, errors.New("supervisor: audit recorder is required")
	}
	if spawner == nil {
		return nil, errors.New("supervisor: spawner is required")
	}

	s := &Supervisor{
		log:      log,
		spawner:  spawner,
		diag:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer:   otel.Tracer(instrumentationName),
		newRunID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	s.diag = s.diag.With("component", "supervisor")

	return s, nil
}

// LastClassification returns the classification of the most recent cycle.
// Before any cycle it is ExitUnknown.
func (s *Supervisor) LastClassification() types.ExitClassification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// RunCycle runs one audit cycle identified by cycleID, which defaults to
// MANUAL when empty. It blocks until the worker has terminated.
//
// Spawn failures and abnormal terminations are part of the returned
// classification, not errors. The error is non-nil only when an audit line
// could not be written; the cycle stops there, after waiting for a worker
// that was already started.
func (s *Supervisor) RunCycle(ctx context.Context, cycleID string) (types.ExitClassification, error) {
	if cycleID == "" {
		cycleID = config.DefaultCycleID
	}
	runID := s.newRunID()

	ctx, span := s.tracer.Start(ctx, SpanName, trace.WithAttributes(
		attribute.String("cycle.id", cycleID),
		attribute.String("cycle.run_id", runID),
	))
	defer span.End()

	diag := s.diag.With("cycle_id", cycleID, "run_id", runID)

	class, err := s.cycle(ctx, diag, cycleID, runID)

	s.mu.Lock()
	s.last = class
	s.mu.Unlock()

	span.SetAttributes(
		attribute.String("exit.kind", class.Kind.String()),
		attribute.Int("exit.code", class.Code),
	)
	switch {
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, "audit log unwritable")
	case class.Kind == types.ExitSpawnFailure:
		span.SetStatus(codes.Error, "spawn failed")
	case class.Kind != types.ExitNormal:
		span.SetStatus(codes.Error, "worker terminated abnormally")
	default:
		span.SetStatus(codes.Ok, "")
	}

	return class, err
}

func (s *Supervisor) cycle(ctx context.Context, diag *slog.Logger, cycleID, runID string) (types.ExitClassification, error) {
	if err := s.log.Record(ctx, "STARTING AUDIT CYCLE "+cycleID, types.LevelInfo); err != nil {
		return types.ExitClassification{}, err
	}

	handle, err := s.spawner.Spawn(ctx, Request{CycleID: cycleID, RunID: runID})
	if err != nil {
		if !auditerr.HasCode(err, auditerr.ErrCodeSpawnFailed) {
			err = auditerr.New("supervisor", "spawn", auditerr.ErrCodeSpawnFailed,
				"cannot create worker").WithCause(err)
		}
		class := types.SpawnFailure(err)
		diag.ErrorContext(ctx, "worker spawn failed", "error", err)

		if logErr := s.log.Record(ctx, SpawnFailedMessage, types.LevelError); logErr != nil {
			return class, logErr
		}
		return class, s.log.Record(ctx, completedMessage(cycleID), types.LevelInfo)
	}

	diag.DebugContext(ctx, "worker started")

	if logErr := s.log.Record(ctx, MonitoringMessage, types.LevelInfo); logErr != nil {
		// The worker is already running and must be reaped.
		return handle.Wait(), logErr
	}

	class := handle.Wait()

	if class.IsNormal() {
		diag.DebugContext(ctx, "worker exited", "exit_code", class.Code)
		msg := fmt.Sprintf("Child process completed successfully - Exit code: %d", class.Code)
		if err := s.log.Record(ctx, msg, types.LevelSuccess); err != nil {
			return class, err
		}
	} else {
		diag.ErrorContext(ctx, "worker terminated abnormally",
			"signal", class.Signal,
			"error", auditerr.New("supervisor", "wait", auditerr.ErrCodeAbnormalTermination,
				"worker terminated abnormally").WithCause(class.Err))
		if err := s.log.Record(ctx, AbnormalExitMessage, types.LevelError); err != nil {
			return class, err
		}
	}

	return class, s.log.Record(ctx, completedMessage(cycleID), types.LevelInfo)
}

func completedMessage(cycleID string) string {
	return "AUDIT CYCLE " + cycleID + " COMPLETED"
}
