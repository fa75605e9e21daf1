package pool

import (
	"github.com/google/uuid"
)

// Handle is an opaque wrapper around one live backend connection. The pool
// tracks handles by a generated identifier rather than by the identity of
// the raw connection value, so backends are free to hand out values that
// are not comparable.
type Handle struct {
	id  string
	raw any
}

func newHandle(raw any) *Handle {
	return &Handle{
		id:  uuid.NewString(),
		raw: raw,
	}
}

// ID returns the stable identifier of this handle.
func (h *Handle) ID() string {
	return h.id
}

// Raw returns the underlying backend connection. Callers pass it to the
// backend's own execute surface; the pool never inspects it.
func (h *Handle) Raw() any {
	return h.raw
}
