// Package mysql provides a ping-style pool adapter backed by
// go-sql-driver/mysql. Liveness is a protocol-level ping; any connection
// that still answers one is reusable.
package mysql

import (
	"context"
	"database/sql/driver"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/guileen/dbpool/pool"
)

// Adapter implements pool.Adapter for MySQL connections.
type Adapter struct {
	connector driver.Connector
}

var _ pool.Adapter = (*Adapter)(nil)

// New returns an adapter for the given DSN.
func New(dsn string) (*Adapter, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("create mysql connector: %w", err)
	}

	return &Adapter{connector: connector}, nil
}

// Connect establishes a new MySQL connection.
func (a *Adapter) Connect(ctx context.Context) (any, error) {
	conn, err := a.connector.Connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}
	return conn, nil
}

// Close tears down the connection.
func (a *Adapter) Close(raw any) error {
	return raw.(driver.Conn).Close()
}

// IsClosed probes the connection with a lightweight ping; any failure
// means the connection is dead.
func (a *Adapter) IsClosed(ctx context.Context, raw any) bool {
	pinger, ok := raw.(driver.Pinger)
	if !ok {
		return false
	}
	return pinger.Ping(ctx) != nil
}

// CanReuse always accepts. A MySQL connection that answers pings carries
// no per-session state the pool needs to clean up.
func (a *Adapter) CanReuse(ctx context.Context, raw any) bool {
	return true
}
