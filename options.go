package uniguard

import (
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/zero-day-ai/uniguard/health"
	"github.com/zero-day-ai/uniguard/supervisor"
)

// Option configures an Auditor.
type Option func(*auditorConfig)

// auditorConfig holds configuration for the Auditor instance.
type auditorConfig struct {
	logger     *slog.Logger
	tracer     trace.Tracer
	meter      metric.Meter
	console    io.Writer
	consoleSet bool
	spawner    supervisor.Spawner
	inProcess  bool
	checks     map[string]health.Check
}

// WithLogger sets the diagnostics logger.
// If not provided, diagnostics are written as JSON to stderr at the
// configured level.
func WithLogger(logger *slog.Logger) Option {
	return func(c *auditorConfig) {
		c.logger = logger
	}
}

// WithTracer sets an OpenTelemetry tracer for cycle spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *auditorConfig) {
		c.tracer = tracer
	}
}

// WithMeter sets an OpenTelemetry meter for check metrics.
func WithMeter(meter metric.Meter) Option {
	return func(c *auditorConfig) {
		c.meter = meter
	}
}

// WithConsole sets where audit lines are mirrored and diagnostic command
// output is written. Default: os.Stdout. Nil silences the console.
func WithConsole(w io.Writer) Option {
	return func(c *auditorConfig) {
		c.console = w
		c.consoleSet = true
	}
}

// WithSpawner replaces the process spawner.
func WithSpawner(spawner supervisor.Spawner) Option {
	return func(c *auditorConfig) {
		c.spawner = spawner
	}
}

// WithInProcessWorker runs each worker on a goroutine of the calling process
// instead of re-executing the binary. It overrides WithSpawner.
func WithInProcessWorker() Option {
	return func(c *auditorConfig) {
		c.inProcess = true
	}
}

// WithChecks replaces checks of the default battery by name
// (types.CheckDisk and friends).
func WithChecks(checks map[string]health.Check) Option {
	return func(c *auditorConfig) {
		if c.checks == nil {
			c.checks = make(map[string]health.Check, len(checks))
		}
		for name, check := range checks {
			c.checks[name] = check
		}
	}
}
