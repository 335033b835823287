// Package util provides shared helpers for the sqlitefs tooling.
package util

import (
	"context"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
)

// StoreRetryOptions returns retry options for store operations invoked from
// the command line. The store itself never retries; callers that want
// resilience against writer contention opt in with these.
func StoreRetryOptions(ctx context.Context, attempts uint) []retry.Option {
	if attempts == 0 {
		attempts = 1
	}
	return []retry.Option{
		retry.Attempts(attempts),
		retry.Delay(100 * time.Millisecond),
		retry.MaxDelay(1 * time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(IsDatabaseLocked),
		retry.Context(ctx),
	}
}

// Retry executes fn with the given retry options, returning the last error
// when all attempts fail.
func Retry(ctx context.Context, fn func() error, opts ...retry.Option) error {
	if len(opts) == 0 {
		opts = StoreRetryOptions(ctx, 3)
	}
	return retry.Do(fn, opts...)
}

// IsDatabaseLocked reports whether the error indicates writer contention on
// the store file.
func IsDatabaseLocked(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "database is locked")
}
