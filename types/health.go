package types

import (
	"fmt"
	"strings"
)

// Health status constants summarise a battery run.
const (
	// StatusHealthy means every check passed.
	StatusHealthy = "healthy"

	// StatusDegraded means some, but not all, checks passed.
	StatusDegraded = "degraded"

	// StatusUnhealthy means no check passed, or no check ran.
	StatusUnhealthy = "unhealthy"
)

// HealthStatus is the overall verdict of one battery run. It is reported in
// diagnostics only; the audit log carries the aggregate line instead.
type HealthStatus struct {
	// Status is one of the Status* constants.
	Status string `json:"status"`

	// Summary is the passed/total count.
	Summary Summary `json:"summary"`

	// Failed names the checks that did not pass, in execution order.
	Failed []string `json:"failed,omitempty"`
}

// Assess derives the health status of a set of outcomes.
func Assess(outcomes []CheckOutcome) HealthStatus {
	h := HealthStatus{Summary: Summarize(outcomes)}
	for _, o := range outcomes {
		if !o.Passed {
			h.Failed = append(h.Failed, o.Name)
		}
	}

	switch {
	case h.Summary.Total > 0 && h.Summary.AllPassed():
		h.Status = StatusHealthy
	case h.Summary.Passed > 0:
		h.Status = StatusDegraded
	default:
		h.Status = StatusUnhealthy
	}
	return h
}

// IsHealthy returns true if the status is StatusHealthy.
func (h HealthStatus) IsHealthy() bool {
	return h.Status == StatusHealthy
}

// String returns e.g. "degraded (3/4 passed; failed: Network Check)".
func (h HealthStatus) String() string {
	if len(h.Failed) == 0 {
		return fmt.Sprintf("%s (%s passed)", h.Status, h.Summary)
	}
	return fmt.Sprintf("%s (%s passed; failed: %s)", h.Status, h.Summary, strings.Join(h.Failed, ", "))
}
