// Package auditlog records the audit trail: timestamped, leveled lines
// appended to a log file and mirrored to the console.
//
// Each Record call opens the log file in append mode, writes the complete
// line with a single write, and closes the file. Because the file is opened
// with O_APPEND, the supervisor and worker processes can both write to it
// without coordination and their lines interleave whole.
package auditlog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/zero-day-ai/uniguard/auditerr"
	"github.com/zero-day-ai/uniguard/types"
)

// TimeLayout is the timestamp format of an audit line.
const TimeLayout = "2006-01-02 15:04:05"

// Recorder is the interface consumed by the check runner, worker and
// supervisor.
type Recorder interface {
	Record(ctx context.Context, message string, level types.Level) error
}

// Logger writes audit lines to a file and a console writer.
// It is safe for concurrent use.
type Logger struct {
	path    string
	console io.Writer
	diag    *slog.Logger
	now     func() time.Time

	// mu serialises console writes within this process.
	mu sync.Mutex
}

// Option configures a Logger.
type Option func(*Logger)

// WithConsole sets the console mirror. Nil disables mirroring.
func WithConsole(w io.Writer) Option {
	return func(l *Logger) {
		l.console = w
	}
}

// WithDiagnostics sets the slog logger that receives a record for every
// failed file write.
func WithDiagnostics(logger *slog.Logger) Option {
	return func(l *Logger) {
		if logger != nil {
			l.diag = logger
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Logger) {
		if now != nil {
			l.now = now
		}
	}
}

// New creates a Logger appending to path and mirroring to stdout.
// The file is not opened until the first Record, and its directory is
// never created.
func New(path string, opts ...Option) *Logger {
	l := &Logger{
		path:    path,
		console: os.Stdout,
		diag:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.diag = l.diag.With("component", "auditlog")
	return l
}

// Path returns the log file path.
func (l *Logger) Path() string {
	return l.path
}

// Format renders an audit line without the trailing newline.
func Format(ts time.Time, level types.Level, message string) string {
	return fmt.Sprintf("[%s] [%s] %s", ts.Local().Format(TimeLayout), level, message)
}

// Record appends one line to the log file and mirrors it to the console.
//
// The console mirror is written even when the file write fails, so the line
// is never lost from view. A file failure is returned as an *auditerr.Error
// with code LOGGING_FAILED and should be treated as fatal for the cycle.
func (l *Logger) Record(ctx context.Context, message string, level types.Level) error {
	if !level.Valid() {
		level = types.LevelInfo
	}
	line := Format(l.now(), level, message) + "\n"

	fileErr := l.appendLine(line)

	if l.console != nil {
		l.mu.Lock()
		_, _ = io.WriteString(l.console, line)
		l.mu.Unlock()
	}

	if fileErr != nil {
		l.diag.ErrorContext(ctx, "audit log write failed",
			"path", l.path,
			"level", level.String(),
			"error", fileErr)
		return auditerr.New("auditlog", "record", auditerr.ErrCodeLoggingFailed,
			"cannot append to "+l.path).WithCause(fileErr)
	}
	return nil
}

// appendLine opens, writes and closes the file. line is written with one
// Write call so it stays atomic under O_APPEND.
func (l *Logger) appendLine(line string) error {
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write([]byte(line)); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Info records message at INFO.
func (l *Logger) Info(ctx context.Context, message string) error {
	return l.Record(ctx, message, types.LevelInfo)
}

// Success records message at SUCCESS.
func (l *Logger) Success(ctx context.Context, message string) error {
	return l.Record(ctx, message, types.LevelSuccess)
}

// Warning records message at WARNING.
func (l *Logger) Warning(ctx context.Context, message string) error {
	return l.Record(ctx, message, types.LevelWarning)
}

// Error records message at ERROR.
func (l *Logger) Error(ctx context.Context, message string) error {
	return l.Record(ctx, message, types.LevelError)
}

var _ Recorder = (*Logger)(nil)
