package health

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/zero-day-ai/uniguard/auditerr"
	"github.com/zero-day-ai/uniguard/auditlog"
	"github.com/zero-day-ai/uniguard/config"
	"github.com/zero-day-ai/uniguard/exec"
	"github.com/zero-day-ai/uniguard/types"
)

// testLogger returns an audit logger on a temp file and the file path.
func testLogger(t *testing.T) (*auditlog.Logger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audit.log")
	return auditlog.New(path, auditlog.WithConsole(nil)), path
}

func readEntries(t *testing.T, path string) []auditlog.Entry {
	t.Helper()
	entries, err := auditlog.ReadFile(path)
	require.NoError(t, err)
	return entries
}

// battery returns the default battery with stub checks.
func battery(disk, memory, process, network bool) []Step {
	return WithChecks(DefaultBattery(config.Default(), nil), map[string]Check{
		types.CheckDisk:    Static(disk),
		types.CheckMemory:  Static(memory),
		types.CheckProcess: Static(process),
		types.CheckNetwork: Static(network),
	})
}

func noSleep(context.Context, time.Duration) {}

func newTestRunner(t *testing.T, log auditlog.Recorder, steps []Step, opts ...RunnerOption) *Runner {
	t.Helper()
	opts = append([]RunnerOption{WithSleep(noSleep), WithMeter(noop.NewMeterProvider().Meter("test"))}, opts...)
	r, err := NewRunner(log, steps, opts...)
	require.NoError(t, err)
	return r
}

func TestRunner_AllPass(t *testing.T) {
	logger, path := testLogger(t)
	r := newTestRunner(t, logger, battery(true, true, true, true))

	report, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, types.Summary{Passed: 4, Total: 4}, report.Summary)
	require.Len(t, report.Outcomes, 4)
	for i, name := range types.CheckNames() {
		assert.Equal(t, name, report.Outcomes[i].Name)
		assert.True(t, report.Outcomes[i].Passed)
	}

	want := []struct {
		level types.Level
		msg   string
	}{
		{types.LevelInfo, "Checking disk usage and health..."},
		{types.LevelSuccess, "Disk check completed"},
		{types.LevelInfo, "Analyzing memory usage patterns..."},
		{types.LevelSuccess, "Memory analysis completed"},
		{types.LevelInfo, "Scanning running processes..."},
		{types.LevelSuccess, "Process scan completed"},
		{types.LevelInfo, "Checking network connectivity..."},
		{types.LevelSuccess, "Network connectivity: OK"},
		{types.LevelSuccess, "All system checks completed: 4/4 passed"},
	}

	entries := readEntries(t, path)
	require.Len(t, entries, len(want))
	for i, w := range want {
		assert.Equal(t, w.level, entries[i].Level, "line %d", i)
		assert.Equal(t, w.msg, entries[i].Message, "line %d", i)
	}
}

func TestRunner_NetworkFailureIsWarning(t *testing.T) {
	logger, path := testLogger(t)
	r := newTestRunner(t, logger, battery(true, true, true, false))

	report, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "3/4", report.Summary.String())
	assert.False(t, report.Outcomes[3].Passed)

	entries := readEntries(t, path)
	require.Len(t, entries, 9)
	assert.Equal(t, types.LevelWarning, entries[7].Level)
	assert.Equal(t, "Network connectivity: FAILED", entries[7].Message)
	assert.Equal(t, "All system checks completed: 3/4 passed", entries[8].Message)
	assert.Equal(t, types.LevelSuccess, entries[8].Level)
}

func TestRunner_ObservationalChecksAlwaysSucceed(t *testing.T) {
	logger, path := testLogger(t)
	r := newTestRunner(t, logger, battery(false, false, false, true))

	report, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "4/4", report.Summary.String())

	for _, e := range readEntries(t, path) {
		assert.NotEqual(t, types.LevelWarning, e.Level)
		assert.NotEqual(t, types.LevelError, e.Level)
	}
}

// TestRunner_AggregateMatchesOutcomes uses four gating steps so that every
// combination of outcomes reaches the aggregate line.
func TestRunner_AggregateMatchesOutcomes(t *testing.T) {
	names := types.CheckNames()

	for mask := 0; mask < 16; mask++ {
		t.Run(fmt.Sprintf("mask_%04b", mask), func(t *testing.T) {
			steps := make([]Step, len(names))
			want := 0
			for i, name := range names {
				passed := mask&(1<<i) != 0
				if passed {
					want++
				}
				steps[i] = Step{
					Name:           name,
					StartMessage:   name + " starting",
					SuccessMessage: name + " ok",
					FailureMessage: name + " failed",
					FailureLevel:   types.LevelWarning,
					Gating:         true,
					Check:          Static(passed),
				}
			}

			logger, path := testLogger(t)
			report, err := newTestRunner(t, logger, steps).Run(context.Background())
			require.NoError(t, err)
			assert.Equal(t, want, report.Summary.Passed)

			entries := readEntries(t, path)
			last := entries[len(entries)-1]
			assert.Equal(t, fmt.Sprintf("All system checks completed: %d/4 passed", want), last.Message)
		})
	}
}

func TestRunner_NoShortCircuit(t *testing.T) {
	var mu sync.Mutex
	var ran []string
	track := func(name string, passed bool) Check {
		return CheckFunc(func(context.Context) CheckResult {
			mu.Lock()
			ran = append(ran, name)
			mu.Unlock()
			return CheckResult{Passed: passed}
		})
	}

	steps := WithChecks(DefaultBattery(config.Default(), nil), map[string]Check{
		types.CheckDisk:    track(types.CheckDisk, false),
		types.CheckMemory:  track(types.CheckMemory, false),
		types.CheckProcess: track(types.CheckProcess, false),
		types.CheckNetwork: track(types.CheckNetwork, false),
	})

	logger, _ := testLogger(t)
	_, err := newTestRunner(t, logger, steps).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.CheckNames(), ran)
}

func TestRunner_StartBeforeCompletion(t *testing.T) {
	logger, path := testLogger(t)
	_, err := newTestRunner(t, logger, battery(true, false, true, false)).Run(context.Background())
	require.NoError(t, err)

	entries := readEntries(t, path)
	steps := DefaultBattery(config.Default(), nil)
	for i, s := range steps {
		start := entries[2*i]
		done := entries[2*i+1]
		assert.Equal(t, s.StartMessage, start.Message)
		assert.Equal(t, types.LevelInfo, start.Level)
		assert.True(t, done.Message == s.SuccessMessage || done.Message == s.FailureMessage,
			"unexpected completion %q for %s", done.Message, s.Name)
	}
}

func TestRunner_SettleDelays(t *testing.T) {
	var mu sync.Mutex
	var delays []time.Duration
	sleep := func(_ context.Context, d time.Duration) {
		mu.Lock()
		delays = append(delays, d)
		mu.Unlock()
	}

	logger, _ := testLogger(t)
	r, err := NewRunner(logger, battery(true, true, true, true),
		WithSleep(sleep), WithMeter(noop.NewMeterProvider().Meter("test")))
	require.NoError(t, err)

	_, err = r.Run(context.Background())
	require.NoError(t, err)

	// The network check has no settle delay.
	assert.Equal(t, []time.Duration{time.Second, time.Second, time.Second}, delays)
}

func TestRunner_Banners(t *testing.T) {
	logger, _ := testLogger(t)
	var console bytes.Buffer
	r := newTestRunner(t, logger, battery(true, true, true, true), WithConsole(&console))

	_, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t,
		"[DISK] Current disk usage:\n[MEMORY] Current memory usage:\n[PROCESSES] Top 5 processes by CPU:\n",
		console.String())
}

// failingRecorder fails every Record after the first n.
type failingRecorder struct {
	n     int
	calls int
	lines []string
}

func (f *failingRecorder) Record(_ context.Context, message string, _ types.Level) error {
	f.calls++
	if f.calls > f.n {
		return auditerr.New("auditlog", "record", auditerr.ErrCodeLoggingFailed, "disk full")
	}
	f.lines = append(f.lines, message)
	return nil
}

func TestRunner_LoggingFailureAborts(t *testing.T) {
	rec := &failingRecorder{n: 3}
	var checks int
	counting := CheckFunc(func(context.Context) CheckResult {
		checks++
		return CheckResult{Passed: true}
	})
	steps := WithChecks(DefaultBattery(config.Default(), nil), map[string]Check{
		types.CheckDisk:    counting,
		types.CheckMemory:  counting,
		types.CheckProcess: counting,
		types.CheckNetwork: counting,
	})

	report, err := newTestRunner(t, rec, steps).Run(context.Background())
	require.Error(t, err)
	assert.True(t, auditerr.HasCode(err, auditerr.ErrCodeLoggingFailed))
	assert.Equal(t, 2, checks, "the battery stops at the failed write")
	assert.Len(t, report.Outcomes, 1)
}

func TestNewRunner_Validation(t *testing.T) {
	logger, _ := testLogger(t)

	_, err := NewRunner(nil, battery(true, true, true, true))
	assert.Error(t, err)

	_, err = NewRunner(logger, nil)
	assert.Error(t, err)

	_, err = NewRunner(logger, []Step{{Name: "empty"}})
	assert.ErrorContains(t, err, "has no check")
}

func TestDefaultBattery(t *testing.T) {
	cfg := config.Default()
	cfg.Checks.ProbeAddress = "192.0.2.1"
	cfg.Checks.CommandTimeout = "3s"
	cfg.Checks.Overrides = map[string]string{types.CheckMemory: "vmstat"}

	var console bytes.Buffer
	steps := DefaultBattery(cfg, &console)
	require.Len(t, steps, 4)

	for i, name := range types.CheckNames() {
		assert.Equal(t, name, steps[i].Name)
	}
	assert.False(t, steps[0].Gating)
	assert.False(t, steps[1].Gating)
	assert.False(t, steps[2].Gating)
	assert.True(t, steps[3].Gating)
	assert.Equal(t, types.LevelWarning, steps[3].FailureLevel)
	assert.Zero(t, steps[3].Settle)

	disk := steps[0].Check.(CommandCheck)
	assert.Equal(t, []string{"-c", DiskCommand}, disk.Command.Args)
	assert.Equal(t, 3*time.Second, disk.Command.Timeout)
	assert.Equal(t, &console, disk.Console)

	memory := steps[1].Check.(CommandCheck)
	assert.Equal(t, []string{"-c", "vmstat"}, memory.Command.Args)

	network := steps[3].Check.(CommandCheck)
	assert.Equal(t, "ping", network.Command.Command)
	assert.Equal(t, []string{"-c", "1", "-W", "1", "192.0.2.1"}, network.Command.Args)
	assert.Nil(t, network.Console, "probe output is discarded")
}

func TestCommandCheck(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}

	var console bytes.Buffer
	pass := CommandCheck{Command: exec.Shell("echo diagnostic output"), Console: &console}.Run(context.Background())
	assert.True(t, pass.Passed)
	assert.Equal(t, 0, pass.ExitCode)
	assert.NoError(t, pass.Err)
	assert.Equal(t, "diagnostic output\n", console.String())

	fail := CommandCheck{Command: exec.Shell("exit 2")}.Run(context.Background())
	assert.False(t, fail.Passed)
	assert.Equal(t, 2, fail.ExitCode)

	missing := CommandCheck{Command: exec.Config{Command: "no-such-diagnostic-tool-xyz"}}.Run(context.Background())
	assert.False(t, missing.Passed)
	assert.Equal(t, -1, missing.ExitCode)
	assert.True(t, auditerr.HasCode(missing.Err, auditerr.ErrCodeBinaryNotFound))
}

func TestSleepContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	sleepContext(ctx, time.Minute)
	assert.Less(t, time.Since(start), time.Second)
}

func TestRunner_DiagnosticsUseAuditLevels(t *testing.T) {
	logger, _ := testLogger(t)
	var diag bytes.Buffer
	r := newTestRunner(t, logger, battery(true, true, true, false),
		WithLogger(slog.New(slog.NewTextHandler(&diag, nil))))

	_, err := r.Run(context.Background())
	require.NoError(t, err)

	out := diag.String()
	assert.Contains(t, out, "level=INFO+2 msg=\"check completed\" component=health check=\"Disk Analysis\"")
	assert.Contains(t, out, "level=WARN msg=\"check degraded\" component=health check=\"Network Check\"")
	assert.Contains(t, out, "CHECK_DEGRADED")

	// A Warn threshold drops SUCCESS completions but keeps degradations.
	diag.Reset()
	r = newTestRunner(t, logger, battery(true, true, true, false),
		WithLogger(slog.New(slog.NewTextHandler(&diag, &slog.HandlerOptions{Level: slog.LevelWarn}))))
	_, err = r.Run(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, diag.String(), "check completed")
	assert.Contains(t, diag.String(), "check degraded")
}

func TestRunner_WarnsAboutMissingBinaries(t *testing.T) {
	logger, path := testLogger(t)
	var diag bytes.Buffer
	steps := WithChecks(battery(true, true, true, true), map[string]Check{
		types.CheckDisk: CommandCheck{Command: exec.Config{Command: "no-such-diagnostic-tool-xyz"}},
	})
	r := newTestRunner(t, logger, steps, WithLogger(slog.New(slog.NewTextHandler(&diag, nil))))

	report, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Contains(t, diag.String(), "diagnostic binary not found")
	assert.Contains(t, diag.String(), "binary=no-such-diagnostic-tool-xyz")
	assert.Equal(t, 1, strings.Count(diag.String(), "diagnostic binary not found"))

	// The battery still runs in full.
	assert.Len(t, report.Outcomes, 4)
	entries := readEntries(t, path)
	assert.Equal(t, "All system checks completed: 4/4 passed", entries[len(entries)-1].Message)
}
