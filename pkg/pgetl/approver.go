package pgetl

import "context"

// Approver confirms destructive operations such as dropping the loaded tables.
//
// Implementations:
//   - ForcedApprover: shows a countdown and approves
//   - InteractiveApprover: asks the operator to type the database name
type Approver interface {
	RequestApproval(ctx context.Context, dbName string) (bool, error)
}
