// Package exec runs the external diagnostic commands of the audit battery.
// It wraps os/exec with a context-aware API that reports the exit code
// instead of failing on it, and can stream a command's output straight to the
// console instead of capturing it.
package exec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"

	"github.com/zero-day-ai/uniguard/auditerr"
)

// Config holds the configuration for command execution.
type Config struct {
	// Command is the name or path of the command to execute (required)
	Command string

	// Args are the command-line arguments (optional)
	Args []string

	// Env specifies the environment in "KEY=value" format (optional)
	// If nil, the command inherits the parent process environment
	Env []string

	// Timeout specifies the maximum execution duration (optional)
	// If zero, no timeout is enforced
	Timeout time.Duration

	// Stdout receives the command's standard output unmodified (optional)
	// If nil, stdout is captured into Result.Stdout
	Stdout io.Writer

	// Stderr receives the command's standard error unmodified (optional)
	// If nil, stderr is captured into Result.Stderr
	Stderr io.Writer
}

// Result holds the result of command execution.
type Result struct {
	// Stdout contains captured stdout, empty when Config.Stdout was set
	Stdout []byte

	// Stderr contains captured stderr, empty when Config.Stderr was set
	Stderr []byte

	// ExitCode is the process exit code, or -1 if the process never exited normally
	ExitCode int

	// Duration is the actual execution time
	Duration time.Duration
}

// Success returns true if the command exited with code 0.
func (r *Result) Success() bool {
	return r != nil && r.ExitCode == 0
}

// Run executes a command with the given configuration.
//
// A non-zero exit code is not treated as an error: the Result is returned
// with ExitCode populated. Only failures to run the command at all (binary
// not found, permission denied, timeout, cancellation) return an error, and
// in those cases a Result with ExitCode -1 is still returned.
//
// Example:
//
//	result, err := exec.Run(ctx, exec.Config{
//		Command: "df",
//		Args:    []string{"-h", "/"},
//		Stdout:  os.Stdout,
//	})
//	if err != nil {
//		return err
//	}
//	fmt.Println("exit code", result.ExitCode)
func Run(ctx context.Context, cfg Config) (*Result, error) {
	if cfg.Command == "" {
		return nil, errors.New("command is required")
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, cfg.Command, cfg.Args...)
	if cfg.Env != nil {
		cmd.Env = cfg.Env
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	if cfg.Stdout != nil {
		cmd.Stdout = cfg.Stdout
	}
	cmd.Stderr = &stderr
	if cfg.Stderr != nil {
		cmd.Stderr = cfg.Stderr
	}

	start := time.Now()
	err := cmd.Run()

	result := &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: 0,
		Duration: time.Since(start),
	}

	if err == nil {
		return result, nil
	}

	// Context errors first: a killed process also surfaces as an ExitError.
	if ctx.Err() == context.DeadlineExceeded {
		result.ExitCode = -1
		return result, auditerr.New("exec", cfg.Command, auditerr.ErrCodeTimeout,
			fmt.Sprintf("command timed out after %v", cfg.Timeout)).WithCause(auditerr.ErrTimeout)
	}
	if ctx.Err() == context.Canceled {
		result.ExitCode = -1
		return result, auditerr.New("exec", cfg.Command, auditerr.ErrCodeExecutionFailed,
			"command cancelled").WithCause(ctx.Err())
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}

	result.ExitCode = -1
	if errors.Is(err, exec.ErrNotFound) {
		return result, auditerr.New("exec", cfg.Command, auditerr.ErrCodeBinaryNotFound,
			"command execution failed").WithCause(err)
	}
	return result, auditerr.New("exec", cfg.Command, auditerr.ErrCodeExecutionFailed,
		"command execution failed").WithCause(err)
}

// Shell returns a Config that runs line through "sh -c". Pipelines such as
// "df -h / | head -2" need a shell.
func Shell(line string) Config {
	return Config{Command: "sh", Args: []string{"-c", line}}
}

// BinaryExists checks if a binary exists in the system PATH.
func BinaryExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
