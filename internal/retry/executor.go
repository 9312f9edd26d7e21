package retry

import (
	"context"
	"time"

	"github.com/vvka-141/pgetl/pkg/pgetl"
)

// Executor runs an operation until it succeeds, fails fatally, or the
// strategy runs out of attempts. Safe for concurrent use.
type Executor struct {
	classifier pgetl.ErrorClassifier
	strategy   pgetl.BackoffStrategy
	logger     pgetl.Logger
}

// NewExecutor panics if classifier or strategy is nil. A nil logger disables retry logging.
func NewExecutor(classifier pgetl.ErrorClassifier, strategy pgetl.BackoffStrategy, logger pgetl.Logger) *Executor {
	if classifier == nil {
		panic("classifier cannot be nil")
	}
	if strategy == nil {
		panic("strategy cannot be nil")
	}
	return &Executor{
		classifier: classifier,
		strategy:   strategy,
		logger:     logger,
	}
}

// Execute returns nil on the first success, the first fatal error, the context
// error if cancelled while waiting, or the last transient error once attempts run out.
// A negative MaxAttempts retries until the context ends.
func (e *Executor) Execute(ctx context.Context, operation func(ctx context.Context) error) error {
	lastErr := operation(ctx)
	if lastErr == nil || !e.classifier.IsTransient(lastErr) {
		return lastErr
	}

	maxAttempts := e.strategy.MaxAttempts()
	for attempt := 0; maxAttempts < 0 || attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		delay := e.strategy.NextDelay(attempt)
		if e.logger != nil {
			e.logger.Verbose("Retry %d after %v: %v", attempt+1, delay.Round(time.Millisecond), lastErr)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		lastErr = operation(ctx)
		if lastErr == nil || !e.classifier.IsTransient(lastErr) {
			return lastErr
		}
	}

	return lastErr
}
