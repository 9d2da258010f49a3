package types

import "log/slog"

// Level is the severity of an audit log line.
type Level string

// Audit levels in increasing severity.
const (
	LevelInfo    Level = "INFO"
	LevelSuccess Level = "SUCCESS"
	LevelWarning Level = "WARNING"
	LevelError   Level = "ERROR"
)

// slogLevelSuccess sits between Info and Warn so SUCCESS lines survive an
// Info threshold but are filtered by a Warn threshold.
const slogLevelSuccess = slog.Level(2)

// String returns the level as it appears in a log line.
func (l Level) String() string {
	return string(l)
}

// Valid reports whether l is one of the four audit levels.
func (l Level) Valid() bool {
	switch l {
	case LevelInfo, LevelSuccess, LevelWarning, LevelError:
		return true
	default:
		return false
	}
}

// SlogLevel maps the audit level onto a slog level for diagnostics.
func (l Level) SlogLevel() slog.Level {
	switch l {
	case LevelSuccess:
		return slogLevelSuccess
	case LevelWarning:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
