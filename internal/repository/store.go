package repository

import (
	"context"
	"database/sql"
	"time"

	appErrors "github.com/unclebandit/customer-address-backend/internal/errors"
	"github.com/unclebandit/customer-address-backend/internal/metrics"
)

// beginStoreCall applies the per-call deadline and returns a completion func that
// releases it and records the operation's outcome.
func beginStoreCall(ctx context.Context, timeout time.Duration, op string) (context.Context, func(error)) {
	cancel := context.CancelFunc(func() {})
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
	}
	start := time.Now()
	return ctx, func(err error) {
		cancel()
		metrics.RecordStoreOperation(op, time.Since(start), err)
	}
}

// requireAffected turns "0 rows affected" into NotFound.
func requireAffected(result sql.Result, op, resource string, id int) error {
	n, err := result.RowsAffected()
	if err != nil {
		return appErrors.Classify(op, resource, id, err)
	}
	if n == 0 {
		return appErrors.NewNotFound(resource, id)
	}
	return nil
}
