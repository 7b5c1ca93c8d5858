// internal/service/customer_service.go
package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	appErrors "github.com/unclebandit/customer-address-backend/internal/errors"
	"github.com/unclebandit/customer-address-backend/internal/metrics"
	"github.com/unclebandit/customer-address-backend/internal/model"
	"github.com/unclebandit/customer-address-backend/internal/queue"
	"github.com/unclebandit/customer-address-backend/internal/repository"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	DefaultSortBy   = "id"
	DefaultOrder    = "ASC"
)

type CustomerService struct {
	CustomerRepo repository.CustomerRepositoryInterface
	AddressRepo  repository.AddressRepositoryInterface
	// Queue receives change events; nil disables publication.
	Queue       queue.Queue
	EventsTopic string
	Log         *logrus.Logger

	PageSizeDefault int
	PageSizeMax     int
}

func (s *CustomerService) CreateCustomer(ctx context.Context, in model.CustomerInput) (int, error) {
	if err := validateCustomer(in); err != nil {
		return 0, err
	}
	id, err := s.CustomerRepo.Create(ctx, in)
	if err != nil {
		return 0, s.storeFailure("create customer", err)
	}
	s.publish(model.EventCustomerCreated, id, 0)
	return id, nil
}

// ListCustomers normalises paging and sorting, then returns one page plus the total.
func (s *CustomerService) ListCustomers(ctx context.Context, filter model.CustomerFilter) (model.CustomerPage, error) {
	filter, err := s.normalizeFilter(filter)
	if err != nil {
		return model.CustomerPage{}, err
	}

	customers, total, err := s.CustomerRepo.List(ctx, filter)
	if err != nil {
		return model.CustomerPage{}, s.storeFailure("list customers", err)
	}
	return model.CustomerPage{
		Customers:  customers,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

func (s *CustomerService) GetCustomer(ctx context.Context, id int) (*model.Customer, error) {
	c, err := s.CustomerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.storeFailure("get customer", err)
	}
	return c, nil
}

func (s *CustomerService) UpdateCustomer(ctx context.Context, id int, in model.CustomerInput) error {
	if err := validateCustomer(in); err != nil {
		return err
	}
	if err := s.CustomerRepo.Update(ctx, id, in); err != nil {
		return s.storeFailure("update customer", err)
	}
	s.publish(model.EventCustomerUpdated, id, 0)
	return nil
}

// DeleteCustomer removes the customer together with all of its addresses.
func (s *CustomerService) DeleteCustomer(ctx context.Context, id int) error {
	if err := s.CustomerRepo.Delete(ctx, id); err != nil {
		return s.storeFailure("delete customer", err)
	}
	s.publish(model.EventCustomerDeleted, id, 0)
	return nil
}

func (s *CustomerService) CreateAddress(ctx context.Context, customerID int, in model.AddressInput) (int, error) {
	if err := validateAddress(in); err != nil {
		return 0, err
	}
	id, err := s.AddressRepo.Create(ctx, customerID, in)
	if err != nil {
		return 0, s.storeFailure("create address", err)
	}
	s.publish(model.EventAddressCreated, customerID, id)
	return id, nil
}

func (s *CustomerService) ListAddresses(ctx context.Context, customerID int) ([]model.Address, error) {
	addresses, err := s.AddressRepo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, s.storeFailure("list addresses", err)
	}
	return addresses, nil
}

func (s *CustomerService) UpdateAddress(ctx context.Context, id int, in model.AddressInput) error {
	if err := validateAddress(in); err != nil {
		return err
	}
	if err := s.AddressRepo.Update(ctx, id, in); err != nil {
		return s.storeFailure("update address", err)
	}
	s.publish(model.EventAddressUpdated, 0, id)
	return nil
}

func (s *CustomerService) DeleteAddress(ctx context.Context, id int) error {
	if err := s.AddressRepo.Delete(ctx, id); err != nil {
		return s.storeFailure("delete address", err)
	}
	s.publish(model.EventAddressDeleted, 0, id)
	return nil
}

func (s *CustomerService) normalizeFilter(f model.CustomerFilter) (model.CustomerFilter, error) {
	defSize, maxSize := s.PageSizeDefault, s.PageSizeMax
	if defSize < 1 {
		defSize = DefaultPageSize
	}
	if maxSize < defSize {
		maxSize = MaxPageSize
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = defSize
	}
	if f.Limit > maxSize {
		f.Limit = maxSize
	}
	// Pages past this point would overflow the row offset; they are empty anyway.
	if lastPage := math.MaxInt / f.Limit; f.Page > lastPage {
		f.Page = lastPage
	}

	if f.SortBy == "" {
		f.SortBy = DefaultSortBy
	}
	if !repository.IsSortColumn(f.SortBy) {
		return f, appErrors.NewValidation("Invalid sort_by value %q.", f.SortBy)
	}
	if f.Order == "" {
		f.Order = DefaultOrder
	}
	if !repository.IsSortOrder(f.Order) {
		return f, appErrors.NewValidation("Invalid order value %q.", f.Order)
	}
	f.Order = strings.ToUpper(f.Order)
	return f, nil
}

func validateCustomer(in model.CustomerInput) error {
	if blank(in.FirstName) || blank(in.LastName) || blank(in.PhoneNumber) {
		return appErrors.NewValidation("All fields are required.")
	}
	return nil
}

func validateAddress(in model.AddressInput) error {
	if blank(in.AddressDetails) || blank(in.City) || blank(in.State) || blank(in.PinCode) {
		return appErrors.NewValidation("All address fields are required.")
	}
	return nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// storeFailure logs unexpected store errors; expected outcomes pass through quietly.
func (s *CustomerService) storeFailure(op string, err error) error {
	var storeErr *appErrors.StoreError
	if errors.As(err, &storeErr) {
		s.logger().WithError(err).WithField("op", op).Warn("store operation failed")
	}
	return err
}

func (s *CustomerService) publish(eventType string, customerID, addressID int) {
	if s.Queue == nil {
		return
	}
	ev := model.ChangeEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		CustomerID: customerID,
		AddressID:  addressID,
		OccurredAt: time.Now().UTC(),
	}
	topic := s.EventsTopic
	if topic == "" {
		topic = "customer_events"
	}

	err := s.Queue.Publish(topic, ev)
	metrics.RecordEventPublished(eventType, err == nil)
	if err != nil {
		s.logger().WithError(err).WithFields(logrus.Fields{"event": eventType, "event_id": ev.ID}).Warn("failed to publish change event")
	}
}

func (s *CustomerService) logger() *logrus.Logger {
	if s.Log == nil {
		return logrus.StandardLogger()
	}
	return s.Log
}
