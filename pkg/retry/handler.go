package retry

import (
	"context"
	"math/rand"
	"time"

	"github.com/rohmanhakim/site-parser/pkg/failure"
	"github.com/rohmanhakim/site-parser/pkg/timeutil"
)

// Retry executes the provided function with retry logic.
// It runs the function up to MaxAttempts times, applying exponential backoff
// with jitter between attempts. Only retryable errors trigger a retry; the
// last classified error is returned on exhaustion so the caller can map it
// onto its own failure vocabulary.
//
// The backoff sleep aborts when ctx is done; the last observed error is
// returned in that case as well.
//
// Type parameter T represents the return type of the function being retried.
func Retry[T any](
	ctx context.Context,
	retryParam RetryParam,
	fn func() (T, failure.ClassifiedError),
) (T, failure.ClassifiedError) {
	var lastErr failure.ClassifiedError
	var zero T

	if retryParam.MaxAttempts < 1 {
		return zero, &RetryError{
			Message: "max attempts cannot be below 1",
			Cause:   ErrZeroAttempt,
		}
	}

	rng := rand.New(rand.NewSource(retryParam.RandomSeed))

	for attempt := 1; attempt <= retryParam.MaxAttempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}

		lastErr = err

		if !isErrorRetryable(err) {
			return zero, err
		}

		if attempt == retryParam.MaxAttempts {
			break
		}

		backoffDelay := timeutil.ExponentialBackoffDelay(
			attempt,
			retryParam.Jitter,
			rng,
			retryParam.BackoffParam,
		)

		timer := time.NewTimer(backoffDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, lastErr
		case <-timer.C:
		}
	}

	return zero, lastErr
}

// isErrorRetryable checks if an error should be retried.
// It uses type assertion to check for the Retryable property.
func isErrorRetryable(err failure.ClassifiedError) bool {
	type hasRetryable interface {
		IsRetryable() bool
	}

	if r, ok := err.(hasRetryable); ok {
		return r.IsRetryable()
	}

	// Errors that do not classify themselves are retried.
	return true
}
