package types

import "fmt"

// ExitKind identifies how a worker ended.
type ExitKind int

const (
	// ExitUnknown means no classification was reached.
	ExitUnknown ExitKind = iota

	// ExitNormal means the worker returned an exit code.
	ExitNormal

	// ExitAbnormal means the worker was terminated by a signal, crashed,
	// or was killed after the wait deadline.
	ExitAbnormal

	// ExitSpawnFailure means the worker could not be started.
	ExitSpawnFailure
)

// String returns a short lowercase name for the kind.
func (k ExitKind) String() string {
	switch k {
	case ExitNormal:
		return "normal"
	case ExitAbnormal:
		return "abnormal"
	case ExitSpawnFailure:
		return "spawn_failure"
	default:
		return "unknown"
	}
}

// ExitClassification is the supervisor's verdict on a worker's termination.
// It is derived once per cycle and never revised.
type ExitClassification struct {
	// Kind is the classification.
	Kind ExitKind

	// Code is the worker's exit code. Only meaningful for ExitNormal.
	Code int

	// Signal names the terminating signal or cause for ExitAbnormal, if known.
	Signal string

	// Err is the underlying error for ExitAbnormal and ExitSpawnFailure.
	Err error
}

// NormalExit classifies a worker that returned exit code code.
func NormalExit(code int) ExitClassification {
	return ExitClassification{Kind: ExitNormal, Code: code}
}

// AbnormalTermination classifies a worker that did not return normally.
func AbnormalTermination(signal string, err error) ExitClassification {
	return ExitClassification{Kind: ExitAbnormal, Code: -1, Signal: signal, Err: err}
}

// SpawnFailure classifies a worker that never started.
func SpawnFailure(err error) ExitClassification {
	return ExitClassification{Kind: ExitSpawnFailure, Code: -1, Err: err}
}

// IsNormal returns true for ExitNormal regardless of the exit code.
func (c ExitClassification) IsNormal() bool {
	return c.Kind == ExitNormal
}

// String returns a human readable form, e.g. "normal(0)" or "abnormal(killed)".
func (c ExitClassification) String() string {
	switch c.Kind {
	case ExitNormal:
		return fmt.Sprintf("normal(%d)", c.Code)
	case ExitAbnormal:
		if c.Signal != "" {
			return fmt.Sprintf("abnormal(%s)", c.Signal)
		}
		return "abnormal"
	default:
		return c.Kind.String()
	}
}
