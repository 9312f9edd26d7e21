package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/vvka-141/pgetl/pkg/pgetl"
)

const dangerBanner = `
  !!! DANGER !!!
  --force: every loaded row in database '%s' will be dropped.
  songs, artists, users, time and songplays are recreated empty.
`

// ForcedApprover counts down and then approves. Used with --force.
type ForcedApprover struct {
	verbose bool
	output  io.Writer
	sleepFn func(time.Duration)
}

func NewForcedApprover(verbose bool) pgetl.Approver {
	return &ForcedApprover{verbose: verbose, output: os.Stderr, sleepFn: time.Sleep}
}

// RequestApproval gives the operator pgetl.DefaultForceApprovalCountdown to press Ctrl+C.
func (a *ForcedApprover) RequestApproval(ctx context.Context, dbName string) (bool, error) {
	fmt.Fprintf(a.output, dangerBanner, dbName)
	fmt.Fprintln(a.output)

	countdownSeconds := int(pgetl.DefaultForceApprovalCountdown.Seconds())
	for i := countdownSeconds; i > 0; i-- {
		if err := ctx.Err(); err != nil {
			fmt.Fprintln(a.output)
			return false, err
		}
		fmt.Fprintf(a.output, "\rDropping in: %d seconds... (Press Ctrl+C to cancel)", i)
		a.sleepFn(time.Second)
	}
	if err := ctx.Err(); err != nil {
		fmt.Fprintln(a.output)
		return false, err
	}

	fmt.Fprintf(a.output, "\r✓ Proceeding with table reset...                                     \n")
	return true, nil
}

var _ pgetl.Approver = (*ForcedApprover)(nil)
