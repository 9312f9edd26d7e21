// Package store implements pgetl.StoreGateway on a single pgx connection and
// holds the Registry of statements used to write each target table.
//
// A unit of work is one database transaction. Every Execute and Fetch inside
// a unit runs in its own savepoint, so a rejected row or a failed lookup is
// rolled back alone and the unit keeps accepting statements.
package store
