package urlutil

import "errors"

// ErrMalformedURL marks URLs that cannot participate in the crawl:
// unparseable input, unsupported schemes, or a missing hostname.
var ErrMalformedURL = errors.New("malformed URL")
