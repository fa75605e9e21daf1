package pool

import (
	"errors"
	"fmt"
)

// ErrPoolExhausted is returned when the pool is at its connection limit and
// no idle handle could be validated.
var ErrPoolExhausted = errors.New("connection pool exhausted")

// PoolError wraps failures from pool operations with the operation name
type PoolError struct {
	Op  string
	Err error
}

func (e *PoolError) Error() string {
	return fmt.Sprintf("pool error during %s: %v", e.Op, e.Err)
}

func (e *PoolError) Unwrap() error {
	return e.Err
}

// IsPoolError checks if an error is a pool error
func IsPoolError(err error) bool {
	var target *PoolError
	return errors.As(err, &target)
}
