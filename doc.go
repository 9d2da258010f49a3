// Package uniguard runs periodic system health audits.
//
// An audit cycle is run by a supervisor that spawns one worker, waits for it
// and classifies how it ended. The worker runs a fixed battery of system
// checks (disk, memory, processes, network reachability). Both sides write
// timestamped, leveled lines to a shared append-only audit log that is also
// mirrored to stdout:
//
//	[2025-01-15 02:00:00] [INFO] STARTING AUDIT CYCLE NIGHTLY
//	[2025-01-15 02:00:00] [INFO] Parent process monitoring child execution
//	[2025-01-15 02:00:00] [INFO] Child process started - performing detailed system checks
//	...
//	[2025-01-15 02:00:04] [SUCCESS] All system checks completed: 4/4 passed
//	[2025-01-15 02:00:04] [SUCCESS] Child process completed successfully - Exit code: 0
//	[2025-01-15 02:00:04] [INFO] AUDIT CYCLE NIGHTLY COMPLETED
//
// # Getting Started
//
// A binary embeds the Auditor and calls RunWorker instead of RunCycle when
// UNIGUARD_RUN_ID is set, since by default each worker is the same binary
// re-executed with that variable:
//
//	cfg, err := config.LoadDefault()
//	if err != nil {
//		log.Fatal(err)
//	}
//	auditor, err := uniguard.New(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	class, err := auditor.RunCycle(ctx, "NIGHTLY")
//
// Use WithInProcessWorker to run the worker on a goroutine instead.
//
// # Packages
//
//   - auditlog: the audit trail writer and parser
//   - health: the check battery and its runner
//   - worker: the worker entry point
//   - supervisor: spawning, waiting and exit classification
//   - config: uniguard.yaml loading
//   - auditerr: coded errors shared by all of the above
//
// # Observability
//
// Internal diagnostics go to a log/slog logger and never to the audit log.
// Each cycle is an OpenTelemetry span and each check updates OpenTelemetry
// metrics, using the global providers unless WithTracer and WithMeter are
// given.
package uniguard
