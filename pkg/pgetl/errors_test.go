package pgetl

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"usage", fmt.Errorf("missing argument: %w", ErrUsage), ExitUsageError},
		{"invalid config", fmt.Errorf("bad ext: %w", ErrInvalidConfig), ExitConfigError},
		{"source missing", fmt.Errorf("walk: %w", ErrSourceNotFound), ExitSourceMissing},
		{"approval denied", ErrApprovalDenied, ExitApprovalDenied},
		{"provision", fmt.Errorf("up: %w", ErrProvisionFailed), ExitProvisionFailed},
		{"connection sentinel", fmt.Errorf("%w: timeout", ErrConnectionFailed), ExitConnectionError},
		{"unsupported auth", ErrUnsupportedAuthMethod, ExitConfigError},
		{"connection refused text", errors.New("dial tcp: connection refused"), ExitConnectionError},
		{"no such host text", errors.New("lookup db: no such host"), ExitConnectionError},
		{"unknown", errors.New("boom"), ExitGeneralError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCodeForError(tt.err); got != tt.want {
				t.Errorf("ExitCodeForError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestRowError_Unwrap(t *testing.T) {
	cause := errors.New("null value in column \"title\"")
	err := fmt.Errorf("file a.json: %w", &RowError{Table: TableCatalogItem, Err: cause})

	if !errors.Is(err, cause) {
		t.Fatal("expected RowError to unwrap to its cause")
	}

	var rowErr *RowError
	if !errors.As(err, &rowErr) {
		t.Fatal("expected errors.As to find RowError")
	}
	if rowErr.Table != TableCatalogItem {
		t.Errorf("Table = %v, want %v", rowErr.Table, TableCatalogItem)
	}
	if got, want := rowErr.Error(), "songs row rejected: null value in column \"title\""; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
