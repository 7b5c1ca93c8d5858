// internal/db/schema.go
package db

import (
    "context"
    "database/sql"
    "fmt"
)

// Statements are idempotent; phone_number's UNIQUE constraint is named
// customers_phone_number_key by Postgres, which appErrors relies on.
var schemaStatements = []string{
    `CREATE TABLE IF NOT EXISTS customers (
        id           SERIAL PRIMARY KEY,
        first_name   TEXT NOT NULL,
        last_name    TEXT NOT NULL,
        phone_number TEXT NOT NULL UNIQUE
    )`,
    `CREATE TABLE IF NOT EXISTS addresses (
        id              SERIAL PRIMARY KEY,
        customer_id     INTEGER NOT NULL REFERENCES customers(id) ON DELETE CASCADE,
        address_details TEXT NOT NULL,
        city            TEXT NOT NULL,
        state           TEXT NOT NULL,
        pin_code        TEXT NOT NULL
    )`,
    `CREATE INDEX IF NOT EXISTS addresses_customer_id_idx ON addresses (customer_id)`,
}

// EnsureSchema creates the tables if they don't exist yet.
func EnsureSchema(ctx context.Context, conn *sql.DB) error {
    for i, stmt := range schemaStatements {
        if _, err := conn.ExecContext(ctx, stmt); err != nil {
            return fmt.Errorf("schema statement %d: %w", i+1, err)
        }
    }
    return nil
}
