package supervisor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/zero-day-ai/uniguard/auditerr"
	"github.com/zero-day-ai/uniguard/types"
	"github.com/zero-day-ai/uniguard/worker"
)

// DefaultWaitDelay is how long a timed-out worker's output pipes may stay
// open after the kill before Wait gives up on them.
const DefaultWaitDelay = 5 * time.Second

// Request describes the worker to start.
type Request struct {
	// CycleID is the audit cycle identifier.
	CycleID string

	// RunID correlates the supervisor and worker of one cycle.
	RunID string
}

// Handle is a running worker.
type Handle interface {
	// Wait blocks until the worker has fully terminated and classifies how it
	// ended. It must be called exactly once.
	Wait() types.ExitClassification
}

// Spawner starts workers.
type Spawner interface {
	Spawn(ctx context.Context, req Request) (Handle, error)
}

// SpawnerFunc adapts a function to the Spawner interface.
type SpawnerFunc func(ctx context.Context, req Request) (Handle, error)

// Spawn calls f(ctx, req).
func (f SpawnerFunc) Spawn(ctx context.Context, req Request) (Handle, error) {
	return f(ctx, req)
}

// WorkerArgs returns the worker's command line: the cycle ID alone. The
// worker role is selected by the run ID in the environment, so any cycle ID
// is passed through untouched.
func WorkerArgs(req Request) []string {
	return []string{req.CycleID}
}

// ProcessSpawner starts each worker as a new process running the current
// binary.
type ProcessSpawner struct {
	// Path is the binary to execute.
	// If empty, os.Executable() is used.
	Path string

	// Args builds the command line for a request.
	// If nil, WorkerArgs is used.
	Args func(req Request) []string

	// Env is added to the inherited environment (optional).
	Env []string

	// Stdout and Stderr receive the worker's output.
	// If nil, the supervisor's own stdout and stderr are inherited.
	Stdout io.Writer
	Stderr io.Writer

	// Timeout bounds the wait. When it expires the worker is killed.
	// Zero means wait forever.
	Timeout time.Duration

	// WaitDelay bounds the wait for output pipes to close once a timed-out
	// worker is gone, e.g. when a grandchild still holds them.
	// If zero, DefaultWaitDelay is used. Only applies when Timeout is set.
	WaitDelay time.Duration
}

// Spawn starts the worker process. It returns once the process is running.
func (p ProcessSpawner) Spawn(ctx context.Context, req Request) (Handle, error) {
	path := p.Path
	if path == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, auditerr.New("supervisor", "spawn", auditerr.ErrCodeSpawnFailed,
				"cannot locate executable").WithCause(err)
		}
		path = exe
	}

	argsFn := p.Args
	if argsFn == nil {
		argsFn = WorkerArgs
	}

	cmd := exec.CommandContext(ctx, path, argsFn(req)...)
	cmd.Env = append(os.Environ(), p.Env...)
	cmd.Env = append(cmd.Env, worker.RunIDEnv+"="+req.RunID)

	cmd.Stdout = os.Stdout
	if p.Stdout != nil {
		cmd.Stdout = p.Stdout
	}
	cmd.Stderr = os.Stderr
	if p.Stderr != nil {
		cmd.Stderr = p.Stderr
	}

	if p.Timeout > 0 {
		cmd.WaitDelay = DefaultWaitDelay
		if p.WaitDelay > 0 {
			cmd.WaitDelay = p.WaitDelay
		}
	}

	if err := cmd.Start(); err != nil {
		return nil, auditerr.New("supervisor", "spawn", auditerr.ErrCodeSpawnFailed,
			"cannot start worker process").
			WithCause(err).
			WithDetails(map[string]any{"path": path})
	}

	h := &processHandle{cmd: cmd, timeout: p.Timeout}
	if p.Timeout > 0 {
		h.timer = time.AfterFunc(p.Timeout, h.expire)
	}
	return h, nil
}

type processHandle struct {
	cmd     *exec.Cmd
	timeout time.Duration
	timer   *time.Timer
}

func (h *processHandle) expire() {
	_ = h.cmd.Process.Kill()
}

func (h *processHandle) Wait() types.ExitClassification {
	err := h.cmd.Wait()

	// Stop reports false once the timer has fired, i.e. the kill was issued.
	timedOut := h.timer != nil && !h.timer.Stop()

	class := Classify(h.cmd.ProcessState, err)
	if class.Kind == types.ExitAbnormal && timedOut {
		class.Err = auditerr.New("supervisor", "wait", auditerr.ErrCodeTimeout,
			fmt.Sprintf("worker killed after %v", h.timeout)).WithCause(auditerr.ErrTimeout)
	}
	return class
}

// Classify derives the exit classification from a finished process.
// A process that returned an exit code is a normal exit whatever the code;
// anything else, including a missing state, is abnormal.
func Classify(state *os.ProcessState, waitErr error) types.ExitClassification {
	if state == nil {
		if waitErr == nil {
			waitErr = errors.New("no process state")
		}
		return types.AbnormalTermination("", waitErr)
	}
	if state.Exited() {
		return types.NormalExit(state.ExitCode())
	}

	signal := ""
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		signal = ws.Signal().String()
	}
	return types.AbnormalTermination(signal, waitErr)
}

// WorkerFunc is an in-process worker. It returns the exit code.
type WorkerFunc func(ctx context.Context, req Request) int

// FuncSpawner runs each worker on its own goroutine.
type FuncSpawner struct {
	Run WorkerFunc
}

// Spawn starts the worker goroutine.
func (f FuncSpawner) Spawn(ctx context.Context, req Request) (Handle, error) {
	if f.Run == nil {
		return nil, auditerr.New("supervisor", "spawn", auditerr.ErrCodeSpawnFailed,
			"no worker function")
	}

	h := &funcHandle{done: make(chan struct{})}
	go func() {
		defer close(h.done)
		defer func() {
			if r := recover(); r != nil {
				h.set(types.AbnormalTermination("panic", auditerr.New("supervisor", "worker",
					auditerr.ErrCodeAbnormalTermination, fmt.Sprintf("worker panicked: %v", r))))
			}
		}()
		h.set(types.NormalExit(f.Run(ctx, req)))
	}()
	return h, nil
}

// funcHandle fields are written by the worker goroutine before done is
// closed and read only after.
type funcHandle struct {
	done     chan struct{}
	class    types.ExitClassification
	finished bool
}

func (h *funcHandle) set(c types.ExitClassification) {
	h.class = c
	h.finished = true
}

func (h *funcHandle) Wait() types.ExitClassification {
	<-h.done
	if !h.finished {
		// The function called runtime.Goexit.
		return types.AbnormalTermination("goexit", auditerr.New("supervisor", "worker",
			auditerr.ErrCodeAbnormalTermination, "worker exited without a result"))
	}
	return h.class
}
