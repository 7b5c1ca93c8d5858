package repository_test

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/customer-address-backend/internal/db"
	appErrors "github.com/unclebandit/customer-address-backend/internal/errors"
	"github.com/unclebandit/customer-address-backend/internal/model"
	"github.com/unclebandit/customer-address-backend/internal/repository"
)

// openTestDB connects to TEST_DATABASE_URL and empties both tables. The database is
// wiped, so never point it at anything that matters.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	_ = godotenv.Load("../../.env.test")
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	conn, err := db.Open(ctx, db.Options{DSN: dsn, MaxOpenConns: 4, MaxIdleConns: 2, PingTimeout: 5 * time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, db.EnsureSchema(ctx, conn))
	_, err = conn.ExecContext(ctx, `TRUNCATE customers, addresses RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return conn
}

func TestPostgresCustomerLifecycle(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()
	customers := &repository.CustomerRepository{DB: conn, Timeout: 5 * time.Second}
	addresses := &repository.AddressRepository{DB: conn, Timeout: 5 * time.Second}

	id, err := customers.Create(ctx, model.CustomerInput{FirstName: "A", LastName: "B", PhoneNumber: "555"})
	require.NoError(t, err)
	assert.Equal(t, 1, id)

	_, err = customers.Create(ctx, model.CustomerInput{FirstName: "C", LastName: "D", PhoneNumber: "555"})
	var conflict *appErrors.ConstraintViolation
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "Phone number already exists.", conflict.Error())

	_, err = addresses.Create(ctx, 999, model.AddressInput{AddressDetails: "x", City: "Pune", State: "MH", PinCode: "1"})
	var notFound *appErrors.NotFound
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "Customer", notFound.Resource)

	_, err = addresses.Create(ctx, id, model.AddressInput{AddressDetails: "1 Main", City: "Pune", State: "MH", PinCode: "411001"})
	require.NoError(t, err)
	_, err = addresses.Create(ctx, id, model.AddressInput{AddressDetails: "2 Main", City: "Pune", State: "MH", PinCode: "411002"})
	require.NoError(t, err)

	list, total, err := customers.List(ctx, model.CustomerFilter{City: "pune", Page: 1, Limit: 10, SortBy: "id", Order: "ASC"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, list, 1)

	require.NoError(t, customers.Delete(ctx, id))
	left, err := addresses.ListByCustomer(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, left)

	_, err = customers.GetByID(ctx, id)
	require.ErrorAs(t, err, &notFound)
}

func TestPostgresSearchEscapesWildcards(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()
	customers := &repository.CustomerRepository{DB: conn, Timeout: 5 * time.Second}

	_, err := customers.Create(ctx, model.CustomerInput{FirstName: "Ann", LastName: "Lee", PhoneNumber: "100"})
	require.NoError(t, err)
	_, err = customers.Create(ctx, model.CustomerInput{FirstName: "50%", LastName: "Off", PhoneNumber: "200"})
	require.NoError(t, err)

	list, total, err := customers.List(ctx, model.CustomerFilter{Search: "%", Page: 1, Limit: 10, SortBy: "id", Order: "ASC"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, "Off", list[0].LastName)
}
