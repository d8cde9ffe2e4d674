package scheduler

import "errors"

// ErrInvalidStartURL is returned before any network activity when the start
// URL cannot be normalized.
var ErrInvalidStartURL = errors.New("invalid start URL")
