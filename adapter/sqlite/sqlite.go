// Package sqlite provides a query-probe pool adapter backed by
// mattn/go-sqlite3. There is no server to lose, so liveness is a trivial
// introspective query against the open database file.
package sqlite

import (
	"context"
	"database/sql/driver"
	"fmt"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/guileen/dbpool/pool"
)

// probeQuery is evaluated without touching any table.
const probeQuery = "select 1"

// Adapter implements pool.Adapter for SQLite connections.
type Adapter struct {
	dsn    string
	driver *sqlite3.SQLiteDriver
}

var _ pool.Adapter = (*Adapter)(nil)

// New returns an adapter for the given DSN (a file path or ":memory:").
func New(dsn string) *Adapter {
	return &Adapter{
		dsn:    dsn,
		driver: &sqlite3.SQLiteDriver{},
	}
}

// Connect opens a new connection to the database file.
func (a *Adapter) Connect(ctx context.Context) (any, error) {
	conn, err := a.driver.Open(a.dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	return conn, nil
}

// Close tears down the connection.
func (a *Adapter) Close(raw any) error {
	return raw.(driver.Conn).Close()
}

// IsClosed probes the connection with a trivial query; an error means the
// handle is unusable.
func (a *Adapter) IsClosed(ctx context.Context, raw any) bool {
	queryer, ok := raw.(driver.QueryerContext)
	if !ok {
		return true
	}

	rows, err := queryer.QueryContext(ctx, probeQuery, nil)
	if err != nil {
		return true
	}
	rows.Close()
	return false
}

// CanReuse always accepts; a connection that survives the checkout probe
// has nothing to clean up.
func (a *Adapter) CanReuse(ctx context.Context, raw any) bool {
	return true
}
