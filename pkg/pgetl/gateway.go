package pgetl

import "context"

// StoreGateway is the narrow write/read surface the load driver and the
// resolver use. A unit of work spans one input file.
//
// Implementations are NOT safe for concurrent use.
type StoreGateway interface {
	// Begin opens the unit of work for one file.
	Begin(ctx context.Context) error

	// Execute writes one record with the registry statement for its table.
	// A non-nil error means the row was rejected and rolled back; the unit stays usable.
	Execute(ctx context.Context, rec Record) error

	// Fetch runs a read query and returns every row.
	// A failed query is rolled back without aborting the unit.
	Fetch(ctx context.Context, query string, args ...any) ([][]any, error)

	// Commit makes the unit's accepted rows durable.
	Commit(ctx context.Context) error

	// Close rolls back any open unit and releases the connection.
	Close(ctx context.Context) error
}
