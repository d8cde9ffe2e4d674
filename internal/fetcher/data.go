package fetcher

// Failure reasons reported per fetch. These feed the crawl diagnostics, so
// the vocabulary is part of the output contract.
const (
	ReasonHTTPStatus   = "http_status"
	ReasonContentType  = "content_type"
	ReasonURLNormalize = "url_normalize"
	ReasonRequestError = "request_error"
)

// HTTP statuses worth retrying.
var transientStatuses = map[int]struct{}{
	429: {},
	500: {},
	502: {},
	503: {},
	504: {},
}

// Content types we attempt to extract contacts from. A missing Content-Type
// header is given the benefit of the doubt.
var parseableContentTypes = map[string]struct{}{
	"text/html":             {},
	"application/xhtml+xml": {},
	"text/plain":            {},
}

// Result is the outcome of fetching one URL.
type Result struct {
	// Whether the page was fetched and is parseable.
	OK bool
	// Canonical form of the URL the response actually came from, after
	// redirects. Empty on failure.
	URL string
	// HTTP status of the final response, 0 when the request never
	// completed.
	StatusCode int
	// Decoded page text, capped at the configured body limit.
	Text string
	// One of the Reason constants; empty on success.
	Reason string
}
