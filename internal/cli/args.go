package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vvka-141/pgetl/pkg/pgetl"
)

// RequireSourceRoot validates that exactly one source_root argument is provided.
// Returns a helpful error message with usage and examples if missing or too many.
func RequireSourceRoot(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf(`missing required argument: <source_root>

Usage: %s

Example:
  %s ./data -d sparkifydb: %w`, cmd.UseLine(), cmd.CommandPath(), pgetl.ErrUsage)
	}
	if len(args) > 1 {
		return fmt.Errorf("accepts 1 arg(s), received %d: %w", len(args), pgetl.ErrUsage)
	}
	return nil
}
