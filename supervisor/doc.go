// Package supervisor runs audit cycles: it spawns one worker, waits for it to
// terminate, classifies the termination and records each transition in the
// audit log.
//
// # Cycle
//
// A cycle always logs, in order:
//
//	STARTING AUDIT CYCLE <id>
//	Parent process monitoring child execution      (when the worker started)
//	Child process completed successfully - ...     (or the abnormal/spawn error line)
//	AUDIT CYCLE <id> COMPLETED
//
// The worker's own lines interleave with these in the shared log file. The
// classification line is written only after the worker has fully terminated.
// There are no retries; spawn failures and abnormal terminations are logged
// and the cycle still completes. RunCycle returns an error only when the
// audit log itself cannot be written.
//
// # Spawners
//
// ProcessSpawner re-executes the current binary with the cycle ID as its only
// argument and UNIGUARD_RUN_ID in its environment, which is what selects the
// worker role. Every worker is a fresh process that shares nothing with the
// supervisor except the log file path and the inherited stdout and stderr.
// FuncSpawner runs a worker function on a goroutine instead; a panic in the
// function is classified as an abnormal termination.
//
// # Tracing
//
// Each cycle is one OpenTelemetry span named "uniguard.cycle".
package supervisor
