package auditerr

import (
	"errors"
	"fmt"
	"strings"
)

// Standard error codes for the audit failure taxonomy.
const (
	// ErrCodeSpawnFailed indicates the worker could not be created
	ErrCodeSpawnFailed = "SPAWN_FAILED"

	// ErrCodeAbnormalTermination indicates the worker ended by signal or crash
	ErrCodeAbnormalTermination = "ABNORMAL_TERMINATION"

	// ErrCodeCheckDegraded indicates a gating check's probe failed
	ErrCodeCheckDegraded = "CHECK_DEGRADED"

	// ErrCodeLoggingFailed indicates the audit log destination is unwritable
	ErrCodeLoggingFailed = "LOGGING_FAILED"

	// ErrCodeExecutionFailed indicates a diagnostic command could not be run
	ErrCodeExecutionFailed = "EXECUTION_FAILED"

	// ErrCodeBinaryNotFound indicates a diagnostic binary is not in PATH
	ErrCodeBinaryNotFound = "BINARY_NOT_FOUND"

	// ErrCodeTimeout indicates a bounded wait expired
	ErrCodeTimeout = "TIMEOUT"

	// ErrCodeInvalidConfig indicates the configuration failed validation
	ErrCodeInvalidConfig = "INVALID_CONFIG"
)

// Error is a structured error type for audit operations.
type Error struct {
	// Component is the part of the system that failed (e.g. "auditlog", "supervisor")
	Component string

	// Operation is the specific operation that failed
	Operation string

	// Code is a standard error code constant
	Code string

	// Message is a human-readable error message
	Message string

	// Details contains additional context as key-value pairs
	Details map[string]any

	// Cause is the underlying error
	Cause error

	// Class categorizes the error by its nature
	Class ErrorClass
}

// New creates a new structured audit error. The class defaults to
// DefaultClassForCode(code).
//
// Example:
//
//	err := auditerr.New("auditlog", "record", auditerr.ErrCodeLoggingFailed, "open log file")
func New(component, operation, code, message string) *Error {
	return &Error{
		Component: component,
		Operation: operation,
		Code:      code,
		Message:   message,
		Class:     DefaultClassForCode(code),
	}
}

// WithCause adds an underlying error and returns the same instance for chaining.
func (e *Error) WithCause(err error) *Error {
	e.Cause = err
	return e
}

// WithDetails adds context and returns the same instance for chaining.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// WithClass overrides the error class.
func (e *Error) WithClass(class ErrorClass) *Error {
	e.Class = class
	return e
}

// Error implements the error interface.
// It formats the error as: "component [operation/code]: message: cause"
//
// Examples:
//   - "auditlog [record/LOGGING_FAILED]: open log file: permission denied"
//   - "supervisor [spawn/SPAWN_FAILED]: cannot create child process"
func (e *Error) Error() string {
	var parts []string

	parts = append(parts, fmt.Sprintf("%s [%s/%s]", e.Component, e.Operation, e.Code))

	if e.Message != "" {
		parts = append(parts, e.Message)
	}

	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}

	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error with the same Code. Component and Operation are
// compared only when set on the target, so a bare code template such as
// &Error{Code: ErrCodeLoggingFailed} matches any logging failure.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code != e.Code {
		return false
	}
	if t.Component != "" && t.Component != e.Component {
		return false
	}
	if t.Operation != "" && t.Operation != e.Operation {
		return false
	}
	return true
}

// HasCode reports whether any error in err's chain is an *Error with code.
func HasCode(err error, code string) bool {
	var e *Error
	for err != nil {
		if errors.As(err, &e) {
			if e.Code == code {
				return true
			}
			err = e.Cause
			continue
		}
		return false
	}
	return false
}

// Sentinel errors for common scenarios

var (
	// ErrBinaryNotFound is returned when a diagnostic binary is not in PATH
	ErrBinaryNotFound = errors.New("binary not found")

	// ErrTimeout is returned when a bounded wait expires
	ErrTimeout = errors.New("operation timed out")
)
