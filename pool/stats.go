package pool

// Stats contains statistics about the pool
type Stats struct {
	Hits          uint64 // checkouts served from the idle registry
	Misses        uint64 // checkouts that created a new handle
	Exhausted     uint64 // checkouts rejected at the connection limit
	ConnectErrors uint64 // adapter Connect failures
	StaleClosed   uint64 // handles closed for exceeding StaleTimeout
	ReuseRefused  uint64 // handles the adapter refused to recycle
	DeadDiscarded uint64 // idle handles found already closed

	// Current registry sizes
	Idle  int
	InUse int
}
