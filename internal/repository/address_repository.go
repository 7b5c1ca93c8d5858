package repository

import (
	"context"
	"database/sql"
	"time"

	appErrors "github.com/unclebandit/customer-address-backend/internal/errors"
	"github.com/unclebandit/customer-address-backend/internal/model"
)

type AddressRepositoryInterface interface {
	Create(ctx context.Context, customerID int, in model.AddressInput) (int, error)
	ListByCustomer(ctx context.Context, customerID int) ([]model.Address, error)
	Update(ctx context.Context, id int, in model.AddressInput) error
	Delete(ctx context.Context, id int) error
}

type AddressRepository struct {
	DB      *sql.DB
	Timeout time.Duration
}

// Create inserts an address under customerID. The parent is not looked up first; the
// foreign key rejects unknown customers and that surfaces as a Customer NotFound.
func (r *AddressRepository) Create(ctx context.Context, customerID int, in model.AddressInput) (id int, err error) {
	ctx, done := beginStoreCall(ctx, r.Timeout, "create_address")
	defer func() { done(err) }()

	query := `
        INSERT INTO addresses (customer_id, address_details, city, state, pin_code)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id
    `
	err = r.DB.QueryRowContext(ctx, query, customerID, in.AddressDetails, in.City, in.State, in.PinCode).Scan(&id)
	if err != nil {
		err = appErrors.Classify("create address", "Address", 0, err)
		if nf, ok := err.(*appErrors.NotFound); ok && nf.Resource == "Customer" {
			nf.ID = customerID
		}
		return 0, err
	}
	return id, nil
}

// ListByCustomer returns every address of the customer, empty if there are none.
func (r *AddressRepository) ListByCustomer(ctx context.Context, customerID int) (addresses []model.Address, err error) {
	ctx, done := beginStoreCall(ctx, r.Timeout, "list_addresses")
	defer func() { done(err) }()

	query := `
        SELECT id, customer_id, address_details, city, state, pin_code
        FROM addresses
        WHERE customer_id = $1
        ORDER BY id
    `
	rows, err := r.DB.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, appErrors.Classify("list addresses", "Address", 0, err)
	}
	defer rows.Close()

	addresses = []model.Address{}
	for rows.Next() {
		var a model.Address
		if err = rows.Scan(&a.ID, &a.CustomerID, &a.AddressDetails, &a.City, &a.State, &a.PinCode); err != nil {
			return nil, appErrors.Classify("list addresses", "Address", 0, err)
		}
		addresses = append(addresses, a)
	}
	if err = rows.Err(); err != nil {
		return nil, appErrors.Classify("list addresses", "Address", 0, err)
	}
	return addresses, nil
}

func (r *AddressRepository) Update(ctx context.Context, id int, in model.AddressInput) (err error) {
	ctx, done := beginStoreCall(ctx, r.Timeout, "update_address")
	defer func() { done(err) }()

	query := `
        UPDATE addresses
        SET address_details = $1, city = $2, state = $3, pin_code = $4
        WHERE id = $5
    `
	result, err := r.DB.ExecContext(ctx, query, in.AddressDetails, in.City, in.State, in.PinCode, id)
	if err != nil {
		return appErrors.Classify("update address", "Address", id, err)
	}
	return requireAffected(result, "update address", "Address", id)
}

func (r *AddressRepository) Delete(ctx context.Context, id int) (err error) {
	ctx, done := beginStoreCall(ctx, r.Timeout, "delete_address")
	defer func() { done(err) }()

	result, err := r.DB.ExecContext(ctx, `DELETE FROM addresses WHERE id = $1`, id)
	if err != nil {
		return appErrors.Classify("delete address", "Address", id, err)
	}
	return requireAffected(result, "delete address", "Address", id)
}

var _ AddressRepositoryInterface = (*AddressRepository)(nil)
