// Package postgres provides a transaction-status-aware pool adapter backed
// by pgx. The server-reported transaction status decides whether a
// returned connection is safe to recycle.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/guileen/dbpool/pool"
)

// Transaction status bytes reported by the backend in ReadyForQuery.
const (
	txStatusIdle    = 'I'
	txStatusInTrans = 'T'
	txStatusInError = 'E'
)

// closeTimeout bounds the terminate message sent on Close.
const closeTimeout = 5 * time.Second

// Adapter implements pool.Adapter for PostgreSQL connections. A connection
// whose transaction status is unknown has lost its server and is treated
// as closed; one that is mid-transaction is rolled back before reuse, and
// one in a failed transaction has its session reset.
type Adapter struct {
	connString string
}

var _ pool.Adapter = (*Adapter)(nil)

// New returns an adapter that connects with connString.
func New(connString string) *Adapter {
	return &Adapter{connString: connString}
}

// Connect establishes a new PostgreSQL connection.
func (a *Adapter) Connect(ctx context.Context) (any, error) {
	conn, err := pgx.Connect(ctx, a.connString)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return conn, nil
}

// Close terminates the connection.
func (a *Adapter) Close(raw any) error {
	conn := raw.(*pgx.Conn)

	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	return conn.Close(ctx)
}

// IsClosed reports whether the connection is unusable. A non-idle but
// still reachable connection is rolled back here so the handle goes out
// clean.
func (a *Adapter) IsClosed(ctx context.Context, raw any) bool {
	conn := raw.(*pgx.Conn)
	if conn.IsClosed() {
		return true
	}

	switch conn.PgConn().TxStatus() {
	case txStatusIdle:
		return false
	case txStatusInTrans, txStatusInError:
		if _, err := conn.Exec(ctx, "rollback"); err != nil {
			return true
		}
		return false
	default:
		// Unknown status: the server connection was lost.
		return true
	}
}

// CanReuse decides whether a returned connection goes back to the idle
// registry. A connection in a failed transaction would fail every
// subsequent query, so its session is reset; one mid-transaction is rolled
// back. Unknown status means the server is gone and the connection must
// not be reused.
func (a *Adapter) CanReuse(ctx context.Context, raw any) bool {
	conn := raw.(*pgx.Conn)
	if conn.IsClosed() {
		return false
	}

	switch conn.PgConn().TxStatus() {
	case txStatusIdle:
		return true
	case txStatusInError:
		if _, err := conn.Exec(ctx, "rollback"); err != nil {
			return false
		}
		if _, err := conn.Exec(ctx, "discard all"); err != nil {
			return false
		}
		return true
	case txStatusInTrans:
		if _, err := conn.Exec(ctx, "rollback"); err != nil {
			return false
		}
		return true
	default:
		return false
	}
}
