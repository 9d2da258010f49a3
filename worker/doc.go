// Package worker is the child side of an audit cycle.
//
// The supervisor starts the worker in a fresh process (or, in tests and
// embedded use, on a goroutine). The worker announces itself in the audit
// log, runs the check battery once, and returns an exit code for the process:
//
//	code := worker.Run(ctx, worker.Options{
//	    Log:    logger,
//	    Runner: runner,
//	    RunID:  os.Getenv(worker.RunIDEnv),
//	})
//	os.Exit(code)
//
// # Exit Codes
//
// The worker exits 0 whenever the battery completed, whatever the individual
// checks reported; check results live in the audit log, not in the exit
// status. It exits 1 (ExitLoggingFailure) when the audit log cannot be
// written, which the supervisor reports as a normal exit with code 1.
package worker
