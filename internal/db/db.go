// internal/db/db.go
package db

import (
    "context"
    "database/sql"
    "fmt"
    "time"

    _ "github.com/lib/pq"
)

// Options configures the connection pool.
type Options struct {
    DSN             string
    MaxOpenConns    int
    MaxIdleConns    int
    ConnMaxLifetime time.Duration
    PingTimeout     time.Duration
}

// Open creates the pool and verifies it with a ping. The caller owns the returned
// handle and must Close it.
func Open(ctx context.Context, opts Options) (*sql.DB, error) {
    conn, err := sql.Open("postgres", opts.DSN)
    if err != nil {
        return nil, fmt.Errorf("failed to open DB: %w", err)
    }

    conn.SetMaxOpenConns(opts.MaxOpenConns)
    conn.SetMaxIdleConns(opts.MaxIdleConns)
    conn.SetConnMaxLifetime(opts.ConnMaxLifetime)

    if opts.PingTimeout > 0 {
        var cancel context.CancelFunc
        ctx, cancel = context.WithTimeout(ctx, opts.PingTimeout)
        defer cancel()
    }
    if err := conn.PingContext(ctx); err != nil {
        conn.Close()
        return nil, fmt.Errorf("failed to ping DB: %w", err)
    }
    return conn, nil
}
