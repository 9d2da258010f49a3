package health

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/zero-day-ai/uniguard/exec"
)

// CheckResult is the raw signal produced by a Check.
type CheckResult struct {
	// Passed is true when the diagnostic succeeded.
	Passed bool

	// ExitCode is the diagnostic command's exit code, -1 if it never ran.
	ExitCode int

	// Duration is the time spent in the check.
	Duration time.Duration

	// Err is set when the check could not be performed at all.
	Err error
}

// Check is an external diagnostic capability.
type Check interface {
	Run(ctx context.Context) CheckResult
}

// CheckFunc adapts a function to the Check interface.
type CheckFunc func(ctx context.Context) CheckResult

// Run calls f(ctx).
func (f CheckFunc) Run(ctx context.Context) CheckResult {
	return f(ctx)
}

// Static returns a Check that always reports passed without running anything.
func Static(passed bool) Check {
	return CheckFunc(func(context.Context) CheckResult {
		code := 0
		if !passed {
			code = 1
		}
		return CheckResult{Passed: passed, ExitCode: code}
	})
}

// CommandCheck runs one external command and passes when it exits 0.
// Its output streams to Console unmodified; it is never parsed.
type CommandCheck struct {
	// Command is the command to run.
	Command exec.Config

	// Console receives stdout and stderr. Nil discards the output.
	Console io.Writer
}

// Binary names the program the check depends on. For a shell line it is
// the first word of the line rather than the shell itself.
func (c CommandCheck) Binary() string {
	args := c.Command.Args
	if c.Command.Command == "sh" && len(args) == 2 && args[0] == "-c" {
		if fields := strings.Fields(args[1]); len(fields) > 0 {
			return fields[0]
		}
	}
	return c.Command.Command
}

// Run executes the command synchronously.
func (c CommandCheck) Run(ctx context.Context) CheckResult {
	cfg := c.Command
	out := c.Console
	if out == nil {
		out = io.Discard
	}
	cfg.Stdout = out
	cfg.Stderr = out

	start := time.Now()
	result, err := exec.Run(ctx, cfg)
	if err != nil {
		code := -1
		if result != nil {
			code = result.ExitCode
		}
		return CheckResult{Passed: false, ExitCode: code, Duration: time.Since(start), Err: err}
	}
	return CheckResult{Passed: result.Success(), ExitCode: result.ExitCode, Duration: result.Duration}
}
