// Package auditerr provides structured error types for the UniGuard audit
// supervisor.
//
// Every failure in the audit taxonomy is represented by an *Error carrying
// the component and operation that failed, a standard error code, and an
// optional cause. Codes map to an ErrorClass that says whether the failure
// comes from the environment, from bad input, or is likely transient.
//
// # Usage
//
//	err := auditerr.New("supervisor", "spawn", auditerr.ErrCodeSpawnFailed,
//	    "cannot create child process").WithCause(startErr)
//
//	var aerr *auditerr.Error
//	if errors.As(err, &aerr) && aerr.Code == auditerr.ErrCodeSpawnFailed {
//	    // ...
//	}
//
// Most audit failures are absorbed at the point of detection and turned into
// log lines. LOGGING_FAILED is the only code that escapes a cycle.
package auditerr
