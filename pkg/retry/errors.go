package retry

import (
	"fmt"

	"github.com/rohmanhakim/site-parser/pkg/failure"
)

type RetryErrorCause string

const (
	ErrZeroAttempt      RetryErrorCause = "max attempts below 1"
	ErrContextDone      RetryErrorCause = "context finished during backoff"
	ErrExhaustedAttempt RetryErrorCause = "exhausted attempts"
)

type RetryError struct {
	Message string
	Cause   RetryErrorCause
}

func (e *RetryError) Error() string {
	return fmt.Sprintf("retry error: %s", e.Cause)
}

func (e *RetryError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}
