package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/vvka-141/pgetl/internal/logging"
	"github.com/vvka-141/pgetl/pkg/pgetl"
)

var rootCmd = &cobra.Command{
	Use:   "pgetl",
	Short: "Load JSON song catalogs and listening logs into PostgreSQL",
	Long: `pgetl walks a directory of JSON files and loads them into a star schema:
songs and artists from the catalog, then users, time buckets and songplays
from the event logs.

Each file is loaded in its own transaction. A rejected row is logged and
skipped; a malformed file is reported and the run moves on.

Exit Codes:
  0  - Success (rejected rows and failed files are reported, not fatal)
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration
  11 - Database connection failed
  12 - User denied reset approval
  13 - Schema provisioning failed
  14 - Source directory not found`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo(os.Stdout, os.Stderr)
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Bool("help", false, "Help for pgetl")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text (stderr, human readable) or json (zap)")
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}

// newLogger builds the logger selected by format. The returned func flushes it.
func newLogger(format string, verbose bool) (pgetl.Logger, func(), error) {
	switch format {
	case "", "text":
		return logging.NewConsoleLogger(verbose), func() {}, nil
	case "json":
		zl, err := logging.NewZapLogger(verbose)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to build json logger: %w", err)
		}
		return zl, func() { _ = zl.Sync() }, nil
	default:
		return nil, nil, fmt.Errorf("--log-format must be text or json, got %q: %w", format, pgetl.ErrInvalidConfig)
	}
}

// runContext bounds a command by timeout and cancels it on SIGINT or SIGTERM.
func runContext(timeout time.Duration, what string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sigChan:
			fmt.Fprintf(os.Stderr, "\n[INTERRUPT] Received interrupt signal, cancelling %s...\n", what)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}
