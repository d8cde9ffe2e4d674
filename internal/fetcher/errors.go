package fetcher

import "github.com/rohmanhakim/site-parser/pkg/failure"

// FetchError classifies a failed fetch attempt so the retry layer knows
// whether to try again and the scheduler knows which counter to bump.
type FetchError struct {
	Message   string
	Reason    string
	Retryable bool
}

func (e *FetchError) Error() string {
	return e.Message
}

func (e *FetchError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *FetchError) IsRetryable() bool {
	return e.Retryable
}
