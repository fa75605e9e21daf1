package pool

import (
	"time"
)

// idleEntry is one available handle, keyed by the time it was returned.
type idleEntry struct {
	returnedAt time.Time
	handle     *Handle
}

// idleHeap is a min-heap of idle entries ordered oldest-returned first, so
// checkout rotates evenly through every available handle. Insertion times
// carry a sub-millisecond random jitter so structurally simultaneous
// returns do not collapse into a fixed reuse order.
type idleHeap []idleEntry

func (h idleHeap) Len() int { return len(h) }

func (h idleHeap) Less(i, j int) bool {
	return h[i].returnedAt.Before(h[j].returnedAt)
}

func (h idleHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

func (h *idleHeap) Push(x any) {
	*h = append(*h, x.(idleEntry))
}

func (h *idleHeap) Pop() any {
	old := *h
	n := len(old)
	entry := old[n-1]
	old[n-1] = idleEntry{}
	*h = old[:n-1]
	return entry
}

// inUseEntry tracks a checked-out handle. createdAt carries the handle's
// jittered connect time, or its last idle timestamp, and drives staleness
// checks on checkin. checkedOutAt is refreshed on every checkout and only
// feeds stale-in-use detection in CloseStale.
type inUseEntry struct {
	createdAt    time.Time
	handle       *Handle
	checkedOutAt time.Time
}
