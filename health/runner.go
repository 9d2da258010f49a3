package health

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/zero-day-ai/uniguard/auditerr"
	"github.com/zero-day-ai/uniguard/auditlog"
	"github.com/zero-day-ai/uniguard/exec"
	"github.com/zero-day-ai/uniguard/types"
)

const instrumentationName = "github.com/zero-day-ai/uniguard/health"

// Report is the result of one battery run.
type Report struct {
	Outcomes []types.CheckOutcome
	Summary  types.Summary
}

// Runner executes a battery of steps in order.
type Runner struct {
	steps   []Step
	log     auditlog.Recorder
	console io.Writer
	diag    *slog.Logger
	meter   metric.Meter
	metrics *runnerMetrics
	sleep   func(ctx context.Context, d time.Duration)
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithConsole sets where step banners are written. Nil disables banners.
func WithConsole(w io.Writer) RunnerOption {
	return func(r *Runner) {
		r.console = w
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.diag = logger
		}
	}
}

// WithMeter sets the OpenTelemetry meter used for check metrics.
func WithMeter(meter metric.Meter) RunnerOption {
	return func(r *Runner) {
		if meter != nil {
			r.meter = meter
		}
	}
}

// WithSleep overrides how settle delays are waited out.
func WithSleep(sleep func(ctx context.Context, d time.Duration)) RunnerOption {
	return func(r *Runner) {
		if sleep != nil {
			r.sleep = sleep
		}
	}
}

// runnerMetrics holds the OpenTelemetry instruments for the runner.
type runnerMetrics struct {
	// count increments once per executed check
	count metric.Int64Counter

	// duration records each check's command time in milliseconds
	duration metric.Float64Histogram
}

func newRunnerMetrics(meter metric.Meter) (*runnerMetrics, error) {
	m := &runnerMetrics{}
	var err error

	m.count, err = meter.Int64Counter(
		"uniguard.check.count",
		metric.WithDescription("Number of audit checks executed"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create check counter: %w", err)
	}

	m.duration, err = meter.Float64Histogram(
		"uniguard.check.duration",
		metric.WithDescription("Audit check command duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("create check duration histogram: %w", err)
	}

	return m, nil
}

// NewRunner creates a runner that records to log. At least one step is
// required and every step needs a check.
func NewRunner(log auditlog.Recorder, steps []Step, opts ...RunnerOption) (*Runner, error) {
	if log == nil {
		return nil, errors.New("health: audit recorder is required")
	}
	if len(steps) == 0 {
		return nil, errors.New("health: at least one step is required")
	}
	for i, s := range steps {
		if s.Check == nil {
			return nil, fmt.Errorf("health: step %d (%s) has no check", i, s.Name)
		}
	}

	r := &Runner{
		steps: steps,
		log:   log,
		diag:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		meter: otel.Meter(instrumentationName),
		sleep: sleepContext,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.diag = r.diag.With("component", "health")

	metrics, err := newRunnerMetrics(r.meter)
	if err != nil {
		return nil, err
	}
	r.metrics = metrics

	return r, nil
}

// Steps returns the configured steps in execution order.
func (r *Runner) Steps() []Step {
	out := make([]Step, len(r.steps))
	copy(out, r.steps)
	return out
}

// Run executes every step in order and logs the aggregate line.
// A failed check never stops the battery; a failed audit write does.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	r.preflight(ctx)
	outcomes := make([]types.CheckOutcome, 0, len(r.steps))

	for _, step := range r.steps {
		outcome, err := r.runStep(ctx, step)
		if err != nil {
			return Report{Outcomes: outcomes, Summary: types.Summarize(outcomes)}, err
		}
		outcomes = append(outcomes, outcome)
	}

	summary := types.Summarize(outcomes)
	msg := fmt.Sprintf("All system checks completed: %s passed", summary)
	if err := r.log.Record(ctx, msg, types.LevelSuccess); err != nil {
		return Report{Outcomes: outcomes, Summary: summary}, err
	}

	return Report{Outcomes: outcomes, Summary: summary}, nil
}

// preflight warns about diagnostic binaries missing from PATH. The steps
// still run and fail on their own.
func (r *Runner) preflight(ctx context.Context) {
	for _, step := range r.steps {
		b, ok := step.Check.(interface{ Binary() string })
		if !ok {
			continue
		}
		if name := b.Binary(); name != "" && !exec.BinaryExists(name) {
			r.diag.WarnContext(ctx, "diagnostic binary not found",
				"check", step.Name,
				"binary", name)
		}
	}
}

func (r *Runner) runStep(ctx context.Context, step Step) (types.CheckOutcome, error) {
	if err := r.log.Record(ctx, step.StartMessage, types.LevelInfo); err != nil {
		return types.CheckOutcome{}, err
	}
	if step.Banner != "" && r.console != nil {
		_, _ = fmt.Fprintln(r.console, step.Banner)
	}

	result := step.Check.Run(ctx)

	if step.Settle > 0 {
		r.sleep(ctx, step.Settle)
	}

	passed := true
	level := types.LevelSuccess
	message := step.SuccessMessage
	if step.Gating && !result.Passed {
		passed = false
		level = step.FailureLevel
		if !level.Valid() {
			level = types.LevelWarning
		}
		message = step.FailureMessage
		if message == "" {
			message = step.Name + " failed"
		}
		r.diag.Log(ctx, level.SlogLevel(), "check degraded",
			"check", step.Name,
			"exit_code", result.ExitCode,
			"error", auditerr.New("health", step.Name, auditerr.ErrCodeCheckDegraded, message).WithCause(result.Err))
	} else {
		if result.Err != nil {
			r.diag.DebugContext(ctx, "observational check could not run",
				"check", step.Name,
				"error", result.Err)
		}
		r.diag.Log(ctx, level.SlogLevel(), "check completed",
			"check", step.Name,
			"exit_code", result.ExitCode,
			"duration", result.Duration)
	}

	outcome := types.CheckOutcome{
		Name:     step.Name,
		Passed:   passed,
		ExitCode: result.ExitCode,
		Duration: result.Duration,
	}
	r.record(ctx, outcome)

	if err := r.log.Record(ctx, message, level); err != nil {
		return outcome, err
	}
	return outcome, nil
}

func (r *Runner) record(ctx context.Context, o types.CheckOutcome) {
	attrs := metric.WithAttributes(
		attribute.String("check", o.Name),
		attribute.Bool("passed", o.Passed),
	)
	r.metrics.count.Add(ctx, 1, attrs)
	r.metrics.duration.Record(ctx, float64(o.Duration.Milliseconds()), attrs)
}

// sleepContext blocks for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
