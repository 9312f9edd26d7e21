// Package provision creates the target database and its five tables.
//
// The schema ships as embedded golang-migrate migrations, applied through the
// pgx/v5 database driver on top of the same pool the loader uses. Reset runs
// every down migration before applying the schema again, after approval.
package provision
