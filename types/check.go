package types

import (
	"fmt"
	"time"
)

// Names of the checks in the audit battery, in execution order.
const (
	CheckDisk    = "Disk Analysis"
	CheckMemory  = "Memory Analysis"
	CheckProcess = "Process Scan"
	CheckNetwork = "Network Check"
)

// CheckNames returns the closed set of check names in execution order.
func CheckNames() []string {
	return []string{CheckDisk, CheckMemory, CheckProcess, CheckNetwork}
}

// CheckOutcome pairs a check name with its boolean result.
// It is consumed immediately for aggregation and not retained after the cycle.
type CheckOutcome struct {
	// Name is one of the Check* constants.
	Name string `json:"name"`

	// Passed is the outcome counted by the aggregate line.
	Passed bool `json:"passed"`

	// ExitCode is the exit code of the diagnostic command, or -1 if the
	// command could not be run.
	ExitCode int `json:"exit_code"`

	// Duration is the time spent running the command, excluding any settle delay.
	Duration time.Duration `json:"duration"`
}

// Summary is the aggregate result of a battery run.
type Summary struct {
	Passed int `json:"passed"`
	Total  int `json:"total"`
}

// Summarize counts the passed outcomes.
func Summarize(outcomes []CheckOutcome) Summary {
	s := Summary{Total: len(outcomes)}
	for _, o := range outcomes {
		if o.Passed {
			s.Passed++
		}
	}
	return s
}

// AllPassed returns true if every check passed.
func (s Summary) AllPassed() bool {
	return s.Passed == s.Total
}

// String formats the summary as "passed/total".
func (s Summary) String() string {
	return fmt.Sprintf("%d/%d", s.Passed, s.Total)
}
