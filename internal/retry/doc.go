// Package retry retries connection establishment with exponential backoff.
//
// It is used only before a domain transaction exists. Statements inside a
// load are never retried: a failed load rolls back and reports its cause.
//
//	executor := retry.NewExecutor(retry.NewConnectClassifier(), retry.NewExponentialBackoff(3))
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    return pool.Ping(ctx)
//	})
package retry
