// Package health runs the UniGuard audit battery: a fixed, ordered list of
// system checks, each backed by one external diagnostic command.
//
// # Checks and Steps
//
// A Check is the capability that produces a pass/fail signal. CommandCheck
// runs an external program and passes when it exits 0; CheckFunc adapts any
// function, which keeps the battery testable without real system tools.
//
// A Step wraps a Check with its audit messages and policy:
//
//   - StartMessage is logged at INFO before the check runs
//   - Banner is printed to the console only, ahead of the command's output
//   - Settle is a fixed pause after the command, before completion is logged
//   - Gating decides whether the check's own result matters
//
// Observational steps (Gating false) always log SuccessMessage at SUCCESS and
// always count as passed. A gating step logs SuccessMessage at SUCCESS when
// its check passes and FailureMessage at FailureLevel otherwise. In the
// default battery only the Network Check is gating.
//
// # Runner
//
//	runner, err := health.NewRunner(logger, health.DefaultBattery(cfg, os.Stdout))
//	if err != nil {
//	    return err
//	}
//	report, err := runner.Run(ctx)
//	// report.Summary.String() == "3/4" when the network probe fails
//
// Steps always run in order, one at a time, with no short-circuiting. After
// the last step the runner logs "All system checks completed: k/N passed".
// The only error Run returns is an audit logging failure, which aborts the
// battery.
//
// # Metrics
//
// The runner records uniguard.check.count and uniguard.check.duration through
// an OpenTelemetry meter, the global one unless WithMeter is given.
package health
