package repository

import (
	"context"
	"database/sql"
	"time"

	appErrors "github.com/unclebandit/customer-address-backend/internal/errors"
	"github.com/unclebandit/customer-address-backend/internal/model"
)

// CustomerRepositoryInterface defines methods used by service
type CustomerRepositoryInterface interface {
	Create(ctx context.Context, in model.CustomerInput) (int, error)
	List(ctx context.Context, filter model.CustomerFilter) ([]model.Customer, int, error)
	GetByID(ctx context.Context, id int) (*model.Customer, error)
	Update(ctx context.Context, id int, in model.CustomerInput) error
	Delete(ctx context.Context, id int) error
}

// CustomerRepository is the concrete implementation
type CustomerRepository struct {
	DB *sql.DB
	// Timeout bounds every statement; zero means the caller's context alone decides.
	Timeout time.Duration
}

// Create inserts a customer and returns its id. A duplicate phone number comes back
// as *appErrors.ConstraintViolation.
func (r *CustomerRepository) Create(ctx context.Context, in model.CustomerInput) (id int, err error) {
	ctx, done := r.begin(ctx, "create_customer")
	defer func() { done(err) }()

	query := `
        INSERT INTO customers (first_name, last_name, phone_number)
        VALUES ($1, $2, $3)
        RETURNING id
    `
	if err = r.DB.QueryRowContext(ctx, query, in.FirstName, in.LastName, in.PhoneNumber).Scan(&id); err != nil {
		return 0, appErrors.Classify("create customer", "Customer", 0, err)
	}
	return id, nil
}

// List returns one page of customers matching filter plus the total number of distinct
// matches. filter.SortBy/Order must be set; unknown values are rejected.
func (r *CustomerRepository) List(ctx context.Context, filter model.CustomerFilter) (customers []model.Customer, total int, err error) {
	ctx, done := r.begin(ctx, "list_customers")
	defer func() { done(err) }()

	q := newCustomerQuery(filter)
	pageQuery, pageArgs, err := q.pageSQL(filter.SortBy, filter.Order, filter.Limit, filter.Offset())
	if err != nil {
		return nil, 0, err
	}

	// Count total
	countQuery, countArgs := q.countSQL()
	if err = r.DB.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, appErrors.Classify("count customers", "Customer", 0, err)
	}

	rows, err := r.DB.QueryContext(ctx, pageQuery, pageArgs...)
	if err != nil {
		return nil, 0, appErrors.Classify("list customers", "Customer", 0, err)
	}
	defer rows.Close()

	customers = []model.Customer{}
	for rows.Next() {
		var c model.Customer
		if err = rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.PhoneNumber); err != nil {
			return nil, 0, appErrors.Classify("list customers", "Customer", 0, err)
		}
		customers = append(customers, c)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, appErrors.Classify("list customers", "Customer", 0, err)
	}
	return customers, total, nil
}

// GetByID fetches a customer by ID
func (r *CustomerRepository) GetByID(ctx context.Context, id int) (c *model.Customer, err error) {
	ctx, done := r.begin(ctx, "get_customer")
	defer func() { done(err) }()

	query := `
        SELECT id, first_name, last_name, phone_number
        FROM customers
        WHERE id = $1
    `
	var customer model.Customer
	err = r.DB.QueryRowContext(ctx, query, id).Scan(&customer.ID, &customer.FirstName, &customer.LastName, &customer.PhoneNumber)
	if err != nil {
		return nil, appErrors.Classify("get customer", "Customer", id, err)
	}
	return &customer, nil
}

// Update replaces all three fields in one statement.
func (r *CustomerRepository) Update(ctx context.Context, id int, in model.CustomerInput) (err error) {
	ctx, done := r.begin(ctx, "update_customer")
	defer func() { done(err) }()

	query := `
        UPDATE customers
        SET first_name = $1, last_name = $2, phone_number = $3
        WHERE id = $4
    `
	result, err := r.DB.ExecContext(ctx, query, in.FirstName, in.LastName, in.PhoneNumber, id)
	if err != nil {
		return appErrors.Classify("update customer", "Customer", id, err)
	}
	return requireAffected(result, "update customer", "Customer", id)
}

// Delete removes the customer; ON DELETE CASCADE removes its addresses in the same statement.
func (r *CustomerRepository) Delete(ctx context.Context, id int) (err error) {
	ctx, done := r.begin(ctx, "delete_customer")
	defer func() { done(err) }()

	result, err := r.DB.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return appErrors.Classify("delete customer", "Customer", id, err)
	}
	return requireAffected(result, "delete customer", "Customer", id)
}

func (r *CustomerRepository) begin(ctx context.Context, op string) (context.Context, func(error)) {
	return beginStoreCall(ctx, r.Timeout, op)
}

var _ CustomerRepositoryInterface = (*CustomerRepository)(nil)
