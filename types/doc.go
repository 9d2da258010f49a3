// Package types provides the core value types shared by the UniGuard audit
// supervisor and its worker.
//
// These types carry no behaviour beyond formatting and aggregation. They are
// produced by one component and consumed by another within a single audit
// cycle, and none of them outlive the cycle except as audit log lines.
//
// # Levels
//
// Audit log lines carry one of four levels:
//
//	types.LevelInfo     // "INFO"
//	types.LevelSuccess  // "SUCCESS"
//	types.LevelWarning  // "WARNING"
//	types.LevelError    // "ERROR"
//
// # Check Outcomes
//
// Each check in the battery yields a CheckOutcome. Summarize folds a slice
// of outcomes into a Summary whose String form is the "passed/total" pair
// written to the aggregate log line:
//
//	summary := types.Summarize(outcomes)
//	fmt.Println(summary) // 3/4
//
// Assess turns the same outcomes into a HealthStatus (healthy, degraded or
// unhealthy) for diagnostics.
//
// # Exit Classification
//
// The supervisor classifies how the worker ended:
//
//	types.NormalExit(0)              // worker returned an exit code
//	types.AbnormalTermination("killed", err)
//	types.SpawnFailure(err)          // worker never started
//
// The zero ExitClassification has Kind ExitUnknown and means no
// classification was reached.
package types
