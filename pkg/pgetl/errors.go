package pgetl

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	report, err := pipeline.Run(ctx, config)
//	if errors.Is(err, pgetl.ErrConnectionFailed) {
//	    // nothing was loaded
//	}
var (
	// ErrUsage indicates missing or surplus command line arguments.
	ErrUsage = errors.New("usage error")

	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrSourceNotFound indicates the source root does not exist or is not a directory.
	ErrSourceNotFound = errors.New("source not found")

	// ErrConnectionFailed indicates database connection failed. It is the only run-fatal store error.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrParseFailed indicates an input file is not valid JSON.
	ErrParseFailed = errors.New("parse failed")

	// ErrApprovalDenied indicates the user denied approval for a reset.
	ErrApprovalDenied = errors.New("approval denied")

	// ErrProvisionFailed indicates schema provisioning failed.
	ErrProvisionFailed = errors.New("provisioning failed")

	// ErrUnsupportedAuthMethod indicates the requested authentication method is not supported.
	ErrUnsupportedAuthMethod = errors.New("unsupported authentication method")

	// ErrNoUnit indicates a statement was submitted without an open unit of work.
	ErrNoUnit = errors.New("no open unit of work")
)

// RowError reports a single record rejected by the store.
// The unit of work stays usable after a RowError.
type RowError struct {
	Table Table
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s row rejected: %v", e.Table, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrUsage):
		return ExitUsageError
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrSourceNotFound):
		return ExitSourceMissing
	case errors.Is(err, ErrApprovalDenied):
		return ExitApprovalDenied
	case errors.Is(err, ErrProvisionFailed):
		return ExitProvisionFailed
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	case errors.Is(err, ErrUnsupportedAuthMethod):
		return ExitConfigError
	}

	// Check for common connection error patterns
	errStr := err.Error()
	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}
