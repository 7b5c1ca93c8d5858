package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/unclebandit/customer-address-backend/internal/errors"
	"github.com/unclebandit/customer-address-backend/internal/model"
)

func newCustomerRepo(t *testing.T) (*CustomerRepository, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return &CustomerRepository{DB: conn, Timeout: time.Second}, mock
}

var customerCols = []string{"id", "first_name", "last_name", "phone_number"}

func TestCustomerCreate(t *testing.T) {
	repo, mock := newCustomerRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO customers (first_name, last_name, phone_number)")).
		WithArgs("A", "B", "555").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	id, err := repo.Create(context.Background(), model.CustomerInput{FirstName: "A", LastName: "B", PhoneNumber: "555"})
	require.NoError(t, err)
	assert.Equal(t, 1, id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerCreateDuplicatePhone(t *testing.T) {
	repo, mock := newCustomerRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO customers")).
		WithArgs("A", "B", "555").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "customers_phone_number_key"})

	_, err := repo.Create(context.Background(), model.CustomerInput{FirstName: "A", LastName: "B", PhoneNumber: "555"})

	var conflict *appErrors.ConstraintViolation
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "Phone number already exists.", conflict.Error())
}

func TestCustomerGetByID(t *testing.T) {
	repo, mock := newCustomerRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM customers")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(customerCols).AddRow(7, "Asha", "Rao", "98450"))

	c, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, &model.Customer{ID: 7, FirstName: "Asha", LastName: "Rao", PhoneNumber: "98450"}, c)
}

func TestCustomerGetByIDNotFound(t *testing.T) {
	repo, mock := newCustomerRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM customers")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(customerCols))

	_, err := repo.GetByID(context.Background(), 7)

	var nf *appErrors.NotFound
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "Customer not found.", nf.Error())
	assert.Equal(t, 7, nf.ID)
}

func TestCustomerUpdate(t *testing.T) {
	repo, mock := newCustomerRepo(t)
	in := model.CustomerInput{FirstName: "A", LastName: "B", PhoneNumber: "777"}

	mock.ExpectExec(regexp.QuoteMeta("UPDATE customers")).
		WithArgs("A", "B", "777", 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Update(context.Background(), 3, in))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE customers")).
		WithArgs("A", "B", "777", 4).
		WillReturnResult(sqlmock.NewResult(0, 0))
	var nf *appErrors.NotFound
	require.ErrorAs(t, repo.Update(context.Background(), 4, in), &nf)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE customers")).
		WithArgs("A", "B", "777", 5).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "customers_phone_number_key"})
	var conflict *appErrors.ConstraintViolation
	require.ErrorAs(t, repo.Update(context.Background(), 5, in), &conflict)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerDelete(t *testing.T) {
	repo, mock := newCustomerRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM customers WHERE id = $1")).
		WithArgs(2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), 2))

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM customers WHERE id = $1")).
		WithArgs(2).
		WillReturnResult(sqlmock.NewResult(0, 0))
	var nf *appErrors.NotFound
	require.ErrorAs(t, repo.Delete(context.Background(), 2), &nf)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerListCountsThenPages(t *testing.T) {
	repo, mock := newCustomerRepo(t)
	filter := model.CustomerFilter{City: "pune", Page: 2, Limit: 2, SortBy: "first_name", Order: "ASC"}

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(DISTINCT c.id) FROM customers c JOIN addresses a ON a.customer_id = c.id WHERE a.city ILIKE $1")).
		WithArgs("%pune%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY c.id ORDER BY c.first_name ASC, c.id ASC LIMIT $2 OFFSET $3")).
		WithArgs("%pune%", 2, 2).
		WillReturnRows(sqlmock.NewRows(customerCols).AddRow(9, "Zoya", "Khan", "111"))

	customers, total, err := repo.List(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, []model.Customer{{ID: 9, FirstName: "Zoya", LastName: "Khan", PhoneNumber: "111"}}, customers)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerListEmptyIsNotNil(t *testing.T) {
	repo, mock := newCustomerRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM customers c")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY c.id ASC LIMIT $1 OFFSET $2")).
		WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows(customerCols))

	customers, total, err := repo.List(context.Background(), model.CustomerFilter{Page: 1, Limit: 10, SortBy: "id", Order: "ASC"})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.NotNil(t, customers)
	assert.Empty(t, customers)
}

func TestCustomerListRejectsSortBeforeQuerying(t *testing.T) {
	repo, mock := newCustomerRepo(t)

	_, _, err := repo.List(context.Background(), model.CustomerFilter{Page: 1, Limit: 10, SortBy: "1; DROP TABLE customers", Order: "ASC"})

	var validation *appErrors.ValidationError
	require.ErrorAs(t, err, &validation)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerStoreCallsAreBounded(t *testing.T) {
	repo, mock := newCustomerRepo(t)
	repo.Timeout = 20 * time.Millisecond

	mock.ExpectQuery(regexp.QuoteMeta("FROM customers")).
		WithArgs(1).
		WillDelayFor(time.Second).
		WillReturnRows(sqlmock.NewRows(customerCols).AddRow(1, "A", "B", "C"))

	start := time.Now()
	_, err := repo.GetByID(context.Background(), 1)

	var storeErr *appErrors.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}
