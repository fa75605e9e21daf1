package pool

import (
	"context"
)

// Adapter supplies the backend-specific half of the pool: the raw
// connect/close factory calls plus the liveness and reuse policy for one
// database product. The pool treats connections as opaque values and makes
// no assumptions beyond this contract.
//
// Probes run with the pool lock released but are expected to be fast;
// long-running liveness checks belong behind the driver's own timeouts.
type Adapter interface {
	// Connect establishes a new backend connection.
	Connect(ctx context.Context) (any, error)

	// Close tears down a connection obtained from Connect.
	Close(raw any) error

	// IsClosed reports whether the connection is already dead. It is
	// consulted before an idle handle is handed out; a dead connection is
	// discarded without a Close call.
	IsClosed(ctx context.Context, raw any) bool

	// CanReuse decides on checkin whether the connection is safe to hand
	// out again. It may mutate the connection as a side effect of
	// deciding, e.g. roll back an open transaction.
	CanReuse(ctx context.Context, raw any) bool
}
