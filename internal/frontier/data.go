package frontier

// Item is one queued URL waiting to be fetched.
type Item struct {
	// Focus score of the URL; lower is fetched first.
	Priority int
	// Link distance from the start URL.
	Depth int
	// Insertion order, breaks priority/depth ties so the queue stays FIFO
	// among equals.
	Sequence uint64
	// Canonical URL string.
	URL string
}
