package ui

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestForcedApprover(out io.Writer, sleep func(time.Duration)) *ForcedApprover {
	return &ForcedApprover{output: out, sleepFn: sleep}
}

func TestForcedApprover_CountsDownThenApproves(t *testing.T) {
	var out bytes.Buffer
	var slept []time.Duration
	approver := newTestForcedApprover(&out, func(d time.Duration) { slept = append(slept, d) })

	approved, err := approver.RequestApproval(context.Background(), "sparkifydb")
	require.NoError(t, err)
	assert.True(t, approved)
	assert.Len(t, slept, 5)
	for _, d := range slept {
		assert.Equal(t, time.Second, d)
	}

	text := out.String()
	assert.Contains(t, text, "DANGER")
	assert.Contains(t, text, "sparkifydb")
	assert.Contains(t, text, "songplays")
	assert.Contains(t, text, "Proceeding with table reset")
}

func TestForcedApprover_CancelledDuringCountdown(t *testing.T) {
	var out bytes.Buffer
	ctx, cancel := context.WithCancel(context.Background())
	ticks := 0
	approver := newTestForcedApprover(&out, func(time.Duration) {
		ticks++
		if ticks == 2 {
			cancel()
		}
	})

	approved, err := approver.RequestApproval(ctx, "sparkifydb")
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, approved)
	assert.Equal(t, 2, ticks)
	assert.NotContains(t, out.String(), "Proceeding")
}

func TestNewForcedApprover(t *testing.T) {
	fa, ok := NewForcedApprover(true).(*ForcedApprover)
	require.True(t, ok)
	assert.True(t, fa.verbose)
	assert.NotNil(t, fa.output)
	assert.NotNil(t, fa.sleepFn)
}

func TestInteractiveApprover_Answers(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		approved bool
		contains string
	}{
		{"exact name", "sparkifydb\n", true, "Confirmed"},
		{"surrounding whitespace", "  sparkifydb  \n", true, "Confirmed"},
		{"name without newline", "sparkifydb", true, "Confirmed"},
		{"other name", "postgres\n", false, "'postgres' does not match"},
		{"empty line", "\n", false, "does not match"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			approver := &InteractiveApprover{input: strings.NewReader(tt.input), output: &out}

			approved, err := approver.RequestApproval(context.Background(), "sparkifydb")
			require.NoError(t, err)
			assert.Equal(t, tt.approved, approved)

			text := out.String()
			assert.Contains(t, text, "WARNING")
			assert.Contains(t, text, "permanently delete")
			assert.Contains(t, text, tt.contains)
		})
	}
}

func TestInteractiveApprover_ReadError(t *testing.T) {
	approver := &InteractiveApprover{input: &errorReader{err: io.ErrUnexpectedEOF}, output: io.Discard}

	approved, err := approver.RequestApproval(context.Background(), "sparkifydb")
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.ErrorContains(t, err, "failed to read input")
	assert.False(t, approved)
}

func TestInteractiveApprover_ContextCancelled(t *testing.T) {
	input := newBlockingReader()
	t.Cleanup(input.Close)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	approver := &InteractiveApprover{input: input, output: io.Discard}
	approved, err := approver.RequestApproval(ctx, "sparkifydb")
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, approved)
}

func TestNewInteractiveApprover(t *testing.T) {
	ia, ok := NewInteractiveApprover(false).(*InteractiveApprover)
	require.True(t, ok)
	assert.False(t, ia.verbose)
	assert.NotNil(t, ia.input)
	assert.NotNil(t, ia.output)
}

type errorReader struct {
	err error
}

func (r *errorReader) Read([]byte) (int, error) {
	return 0, r.err
}

// blockingReader never yields data until closed.
type blockingReader struct {
	done chan struct{}
}

func newBlockingReader() *blockingReader {
	return &blockingReader{done: make(chan struct{})}
}

func (r *blockingReader) Read([]byte) (int, error) {
	<-r.done
	return 0, io.EOF
}

func (r *blockingReader) Close() {
	select {
	case <-r.done:
	default:
		close(r.done)
	}
}
