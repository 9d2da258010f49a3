package health

import (
	"io"
	"time"

	"github.com/zero-day-ai/uniguard/config"
	"github.com/zero-day-ai/uniguard/exec"
	"github.com/zero-day-ai/uniguard/types"
)

// Step is one entry of the audit battery.
type Step struct {
	// Name is the check name, one of the types.Check* constants for the
	// default battery.
	Name string

	// StartMessage is logged at INFO before the check runs.
	StartMessage string

	// Banner is written to the console before the check runs. Not logged.
	Banner string

	// SuccessMessage is logged at SUCCESS when the step completes as passed.
	SuccessMessage string

	// FailureMessage is logged at FailureLevel when a gating check fails.
	FailureMessage string

	// FailureLevel is the level of FailureMessage. Default: WARNING.
	FailureLevel types.Level

	// Gating makes the check's result decide the step's outcome and level.
	Gating bool

	// Settle is the pause between the check and its completion line.
	Settle time.Duration

	// Check produces the pass/fail signal.
	Check Check
}

// Default shell command lines of the battery.
const (
	DiskCommand    = "df -h / | head -2"
	MemoryCommand  = "free -h"
	ProcessCommand = "ps -eo pid,ppid,cmd,%mem,%cpu --sort=-%cpu --no-headers | head -5"
)

// PingCommand returns the single-packet reachability probe for address.
func PingCommand(address string) exec.Config {
	return exec.Config{Command: "ping", Args: []string{"-c", "1", "-W", "1", address}}
}

// DefaultBattery returns the fixed battery in execution order: Disk Analysis,
// Memory Analysis, Process Scan, Network Check. Diagnostic output goes to
// console, except the network probe's, which is discarded.
func DefaultBattery(cfg *config.Config, console io.Writer) []Step {
	if cfg == nil {
		cfg = config.Default()
	}
	settle := cfg.Checks.GetSettleDelay()
	timeout := cfg.Checks.GetCommandTimeout()

	command := func(name, line string) exec.Config {
		if override, ok := cfg.Checks.Overrides[name]; ok && override != "" {
			line = override
		}
		c := exec.Shell(line)
		c.Timeout = timeout
		return c
	}

	probe := PingCommand(cfg.Checks.GetProbeAddress())
	if override, ok := cfg.Checks.Overrides[types.CheckNetwork]; ok && override != "" {
		probe = exec.Shell(override)
	}
	probe.Timeout = timeout

	return []Step{
		{
			Name:           types.CheckDisk,
			StartMessage:   "Checking disk usage and health...",
			Banner:         "[DISK] Current disk usage:",
			SuccessMessage: "Disk check completed",
			Settle:         settle,
			Check:          CommandCheck{Command: command(types.CheckDisk, DiskCommand), Console: console},
		},
		{
			Name:           types.CheckMemory,
			StartMessage:   "Analyzing memory usage patterns...",
			Banner:         "[MEMORY] Current memory usage:",
			SuccessMessage: "Memory analysis completed",
			Settle:         settle,
			Check:          CommandCheck{Command: command(types.CheckMemory, MemoryCommand), Console: console},
		},
		{
			Name:           types.CheckProcess,
			StartMessage:   "Scanning running processes...",
			Banner:         "[PROCESSES] Top 5 processes by CPU:",
			SuccessMessage: "Process scan completed",
			Settle:         settle,
			Check:          CommandCheck{Command: command(types.CheckProcess, ProcessCommand), Console: console},
		},
		{
			Name:           types.CheckNetwork,
			StartMessage:   "Checking network connectivity...",
			SuccessMessage: "Network connectivity: OK",
			FailureMessage: "Network connectivity: FAILED",
			FailureLevel:   types.LevelWarning,
			Gating:         true,
			Check:          CommandCheck{Command: probe},
		},
	}
}

// WithChecks returns a copy of steps whose checks are replaced by name.
// Steps without a replacement keep their check.
func WithChecks(steps []Step, checks map[string]Check) []Step {
	out := make([]Step, len(steps))
	copy(out, steps)
	for i := range out {
		if c, ok := checks[out[i].Name]; ok && c != nil {
			out[i].Check = c
		}
	}
	return out
}
