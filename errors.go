package uniguard

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/zero-day-ai/uniguard/auditerr"
)

// Sentinel errors returned by the Auditor.
// These errors can be used with errors.Is() for error checking.
var (
	// ErrInvalidConfig indicates the provided configuration is invalid or incomplete.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrLoggingFailed indicates the audit log could not be written.
	// The cycle was abandoned at the failed line.
	ErrLoggingFailed = errors.New("audit log unwritable")

	// ErrSpawnFailed indicates no worker could be created. RunCycle reports
	// this through the classification; it is available for embedders that
	// convert a classification into an error.
	ErrSpawnFailed = errors.New("worker spawn failed")
)

// wrapError attaches the matching sentinel to a coded error from a
// subpackage, keeping the original in the chain.
func wrapError(err error) error {
	switch {
	case err == nil:
		return nil
	case auditerr.HasCode(err, auditerr.ErrCodeLoggingFailed):
		return fmt.Errorf("%w: %w", ErrLoggingFailed, err)
	case auditerr.HasCode(err, auditerr.ErrCodeInvalidConfig):
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	case auditerr.HasCode(err, auditerr.ErrCodeSpawnFailed):
		return fmt.Errorf("%w: %w", ErrSpawnFailed, err)
	default:
		return err
	}
}

// CloseWithLog attempts to close the provided resource and logs any error
// at warning level. This is intended for use in defer statements to ensure
// cleanup errors are not silently ignored.
//
// If logger is nil, slog.Default() is used.
//
// Example usage:
//
//	defer uniguard.CloseWithLog(file, logger, "config file")
func CloseWithLog(closer io.Closer, logger *slog.Logger, name string) {
	if closer == nil {
		return
	}

	if logger == nil {
		logger = slog.Default()
	}

	if err := closer.Close(); err != nil {
		logger.Warn("failed to close resource",
			"resource", name,
			"error", err)
	}
}
