package scheduler

// Why the crawl ended.
const (
	StopCompleted  = "completed"
	StopMaxPages   = "max_pages"
	StopMaxSeconds = "max_seconds"
)

// Failure reason recorded when a fetch worker panics.
const reasonWorkerPanic = "future_exception"

// ParseResult is the crawl's output: the site origin and the sorted,
// deduplicated contacts found on it.
type ParseResult struct {
	URL         string       `json:"url"`
	Emails      []string     `json:"emails"`
	Phones      []string     `json:"phones"`
	Diagnostics *Diagnostics `json:"diagnostics,omitempty"`
}

// Diagnostics describes how the crawl went, for operators and tests.
type Diagnostics struct {
	StopReason      string         `json:"stop_reason"`
	DurationSeconds float64        `json:"duration_seconds"`
	Limits          Limits         `json:"limits"`
	Counters        Counters       `json:"counters"`
	FailureReasons  map[string]int `json:"failure_reasons"`
	ContactsFound   ContactsFound  `json:"contacts_found"`
}

type Limits struct {
	MaxPages   int     `json:"max_pages"`
	MaxDepth   int     `json:"max_depth"`
	MaxSeconds float64 `json:"max_seconds"`
}

type Counters struct {
	ScheduledPages    int `json:"scheduled_pages"`
	FetchedPages      int `json:"fetched_pages"`
	FailedPages       int `json:"failed_pages"`
	ProcessedPages    int `json:"processed_pages"`
	SkippedSoupParse  int `json:"skipped_soup_parse"`
	DuplicatePages    int `json:"duplicate_pages"`
	DiscoveredURLs    int `json:"discovered_urls"`
	LinksExamined     int `json:"links_examined"`
	LinksEnqueued     int `json:"links_enqueued"`
	FrontierRemaining int `json:"frontier_remaining"`
	MaxDepthReached   int `json:"max_depth_reached"`
}

type ContactsFound struct {
	Emails int `json:"emails"`
	Phones int `json:"phones"`
}
