// Package retry retries connection establishment with exponential backoff.
//
// Only opening a pool is retried. Record writes get exactly one attempt and
// never pass through an Executor.
//
//	executor := retry.NewExecutor(
//	    retry.NewPostgreSQLErrorClassifier(),
//	    retry.NewExponentialBackoff(pgetl.DefaultRetryMaxAttempts),
//	    logger,
//	)
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    return pool.Ping(ctx)
//	})
package retry
