// internal/errors/errors.go
package appErrors

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// Postgres SQLSTATE codes we care about.
const (
	codeUniqueViolation     pq.ErrorCode = "23505"
	codeForeignKeyViolation pq.ErrorCode = "23503"
)

// ValidationError means the caller sent something unusable (missing field, bad id, bad sort).
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidation(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ConstraintViolation is a uniqueness conflict reported by the store.
type ConstraintViolation struct {
	Constraint string
	Message    string
}

func (e *ConstraintViolation) Error() string {
	return e.Message
}

// NotFound is returned when no row matched the given id.
type NotFound struct {
	Resource string
	ID       int
}

func (e *NotFound) Error() string {
	return fmt.Sprintf("%s not found.", e.Resource)
}

func NewNotFound(resource string, id int) error {
	return &NotFound{Resource: resource, ID: id}
}

// StoreError wraps any other persistence failure.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Classify turns a raw database error into one of the types above, based on the
// driver's SQLSTATE code rather than the message text. resource/id describe the row
// the statement targeted and are only used for sql.ErrNoRows.
func Classify(op, resource string, id int, err error) error {
	if err == nil {
		return nil
	}

	var (
		validation *ValidationError
		conflict   *ConstraintViolation
		notFound   *NotFound
		storeErr   *StoreError
	)
	if errors.As(err, &validation) || errors.As(err, &conflict) || errors.As(err, &notFound) || errors.As(err, &storeErr) {
		return err
	}

	if errors.Is(err, sql.ErrNoRows) {
		return NewNotFound(resource, id)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case codeUniqueViolation:
			return &ConstraintViolation{Constraint: pqErr.Constraint, Message: conflictMessage(pqErr.Constraint)}
		case codeForeignKeyViolation:
			// The only FK in the schema is addresses.customer_id.
			return &NotFound{Resource: "Customer"}
		}
	}

	return &StoreError{Op: op, Err: err}
}

func conflictMessage(constraint string) string {
	switch constraint {
	case "customers_phone_number_key":
		return "Phone number already exists."
	default:
		return "Record violates a uniqueness constraint."
	}
}
