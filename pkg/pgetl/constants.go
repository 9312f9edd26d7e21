package pgetl

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
//
// Row rejections and per-file failures never produce a non-zero exit code.
const (
	ExitSuccess         = 0  // Load completed (possibly with rejected rows)
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration
	ExitConnectionError = 11 // Failed to connect to database
	ExitApprovalDenied  = 12 // User denied reset approval
	ExitProvisionFailed = 13 // Schema provisioning failed
	ExitSourceMissing   = 14 // Source root not found
)

const (
	// DefaultExtension is the file suffix the walker matches when none is configured.
	DefaultExtension = ".json"

	// DefaultCatalogDir is the catalog subdirectory of a source root.
	DefaultCatalogDir = "song_data"

	// DefaultEventsDir is the event log subdirectory of a source root.
	DefaultEventsDir = "log_data"

	// DefaultTimeout guards a whole run against hangs in the store layer.
	DefaultTimeout = 1 * time.Hour

	// DefaultForceApprovalCountdown is the countdown before a forced reset proceeds.
	DefaultForceApprovalCountdown = 5 * time.Second

	// DefaultRetryInitialDelay is the initial delay before the first connection retry.
	DefaultRetryInitialDelay = 100 * time.Millisecond

	// DefaultRetryMaxDelay is the maximum delay between connection retries.
	DefaultRetryMaxDelay = 1 * time.Minute

	// DefaultRetryMaxAttempts is the maximum number of connection retries.
	// Records are never retried.
	DefaultRetryMaxAttempts = 3

	// DefaultManagementDB is the database used for CREATE DATABASE.
	DefaultManagementDB = "postgres"

	// DefaultTargetDB is the database loaded when none is configured.
	DefaultTargetDB = "sparkifydb"

	// PlayedPage is the page value marking an event entry as a song play.
	PlayedPage = "NextSong"
)
