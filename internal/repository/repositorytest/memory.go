// Package repositorytest provides in-memory repositories that honour the same
// contracts as the Postgres ones (unique phone numbers, cascade delete, filter
// semantics), for handler and service tests.
package repositorytest

import (
	"context"
	"sort"
	"strings"
	"sync"

	appErrors "github.com/unclebandit/customer-address-backend/internal/errors"
	"github.com/unclebandit/customer-address-backend/internal/model"
	"github.com/unclebandit/customer-address-backend/internal/repository"
)

// Store backs both fake repositories so cascade delete can be observed.
type Store struct {
	mu           sync.Mutex
	customers    map[int]model.Customer
	addresses    map[int]model.Address
	nextCustomer int
	nextAddress  int
	FailWith     error // when set, every call returns it
}

func NewStore() *Store {
	return &Store{
		customers: map[int]model.Customer{},
		addresses: map[int]model.Address{},
	}
}

func (s *Store) Customers() *Customers { return &Customers{s} }
func (s *Store) Addresses() *Addresses { return &Addresses{s} }

// AddressCount counts stored addresses of a customer.
func (s *Store) AddressCount(customerID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, a := range s.addresses {
		if a.CustomerID == customerID {
			n++
		}
	}
	return n
}

func (s *Store) phoneTaken(phone string, exceptID int) bool {
	for id, c := range s.customers {
		if id != exceptID && c.PhoneNumber == phone {
			return true
		}
	}
	return false
}

var phoneConflict = &appErrors.ConstraintViolation{Constraint: "customers_phone_number_key", Message: "Phone number already exists."}

type Customers struct{ s *Store }

func (r *Customers) Create(ctx context.Context, in model.CustomerInput) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return 0, r.s.FailWith
	}
	if r.s.phoneTaken(in.PhoneNumber, 0) {
		return 0, phoneConflict
	}
	r.s.nextCustomer++
	id := r.s.nextCustomer
	r.s.customers[id] = model.Customer{ID: id, FirstName: in.FirstName, LastName: in.LastName, PhoneNumber: in.PhoneNumber}
	return id, nil
}

func (r *Customers) List(ctx context.Context, f model.CustomerFilter) ([]model.Customer, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return nil, 0, r.s.FailWith
	}
	if !repository.IsSortColumn(f.SortBy) || !repository.IsSortOrder(f.Order) {
		return nil, 0, appErrors.NewValidation("Invalid sort.")
	}

	matched := []model.Customer{}
	for _, c := range r.s.customers {
		if f.Search != "" && !contains(c.FirstName, f.Search) && !contains(c.LastName, f.Search) && !contains(c.PhoneNumber, f.Search) {
			continue
		}
		if f.HasAddressFilter() && !r.s.hasMatchingAddress(c.ID, f) {
			continue
		}
		matched = append(matched, c)
	}

	desc := strings.EqualFold(f.Order, "DESC")
	sort.Slice(matched, func(i, j int) bool {
		a, b := sortKey(matched[i], f.SortBy), sortKey(matched[j], f.SortBy)
		if a != b {
			if desc {
				return a > b
			}
			return a < b
		}
		return matched[i].ID < matched[j].ID
	})

	total := len(matched)
	start := f.Offset()
	if start > total {
		return []model.Customer{}, total, nil
	}
	end := start + f.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (s *Store) hasMatchingAddress(customerID int, f model.CustomerFilter) bool {
	for _, a := range s.addresses {
		if a.CustomerID != customerID {
			continue
		}
		if (f.City == "" || contains(a.City, f.City)) &&
			(f.State == "" || contains(a.State, f.State)) &&
			(f.PinCode == "" || contains(a.PinCode, f.PinCode)) {
			return true
		}
	}
	return false
}

func (r *Customers) GetByID(ctx context.Context, id int) (*model.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return nil, r.s.FailWith
	}
	c, ok := r.s.customers[id]
	if !ok {
		return nil, appErrors.NewNotFound("Customer", id)
	}
	return &c, nil
}

func (r *Customers) Update(ctx context.Context, id int, in model.CustomerInput) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return r.s.FailWith
	}
	if _, ok := r.s.customers[id]; !ok {
		return appErrors.NewNotFound("Customer", id)
	}
	if r.s.phoneTaken(in.PhoneNumber, id) {
		return phoneConflict
	}
	r.s.customers[id] = model.Customer{ID: id, FirstName: in.FirstName, LastName: in.LastName, PhoneNumber: in.PhoneNumber}
	return nil
}

func (r *Customers) Delete(ctx context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return r.s.FailWith
	}
	if _, ok := r.s.customers[id]; !ok {
		return appErrors.NewNotFound("Customer", id)
	}
	delete(r.s.customers, id)
	for aid, a := range r.s.addresses {
		if a.CustomerID == id {
			delete(r.s.addresses, aid)
		}
	}
	return nil
}

type Addresses struct{ s *Store }

func (r *Addresses) Create(ctx context.Context, customerID int, in model.AddressInput) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return 0, r.s.FailWith
	}
	if _, ok := r.s.customers[customerID]; !ok {
		return 0, appErrors.NewNotFound("Customer", customerID)
	}
	r.s.nextAddress++
	id := r.s.nextAddress
	r.s.addresses[id] = model.Address{
		ID: id, CustomerID: customerID,
		AddressDetails: in.AddressDetails, City: in.City, State: in.State, PinCode: in.PinCode,
	}
	return id, nil
}

func (r *Addresses) ListByCustomer(ctx context.Context, customerID int) ([]model.Address, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return nil, r.s.FailWith
	}
	out := []model.Address{}
	for _, a := range r.s.addresses {
		if a.CustomerID == customerID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *Addresses) Update(ctx context.Context, id int, in model.AddressInput) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return r.s.FailWith
	}
	a, ok := r.s.addresses[id]
	if !ok {
		return appErrors.NewNotFound("Address", id)
	}
	a.AddressDetails, a.City, a.State, a.PinCode = in.AddressDetails, in.City, in.State, in.PinCode
	r.s.addresses[id] = a
	return nil
}

func (r *Addresses) Delete(ctx context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return r.s.FailWith
	}
	if _, ok := r.s.addresses[id]; !ok {
		return appErrors.NewNotFound("Address", id)
	}
	delete(r.s.addresses, id)
	return nil
}

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func sortKey(c model.Customer, column string) string {
	switch column {
	case "first_name":
		return c.FirstName
	case "last_name":
		return c.LastName
	case "phone_number":
		return c.PhoneNumber
	default:
		return ""
	}
}

var (
	_ repository.CustomerRepositoryInterface = (*Customers)(nil)
	_ repository.AddressRepositoryInterface  = (*Addresses)(nil)
)
