package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mmynk/invoicer/internal/models"
	"github.com/mmynk/invoicer/internal/storage"
)

// CustomerInput is the data for a new customer.
type CustomerInput struct {
	Name  string
	Email string
	Phone *string
	Type  models.CustomerType
}

// CustomerUpdate carries the fields to change; nil fields are left as they are.
type CustomerUpdate struct {
	Name  *string
	Email *string
	Phone *string
	Type  *models.CustomerType
}

// CustomerService manages customers on behalf of their owners.
type CustomerService struct {
	store storage.CustomerStore
}

// NewCustomerService creates a new CustomerService.
func NewCustomerService(store storage.CustomerStore) *CustomerService {
	return &CustomerService{store: store}
}

// Create adds a customer owned by the requester.
func (s *CustomerService) Create(ctx context.Context, requester *models.User, in CustomerInput) (*models.Customer, error) {
	if err := requireUser(requester); err != nil {
		return nil, err
	}
	slog.Info("CreateCustomer request received", "user_id", requester.ID, "name", in.Name)

	if in.Type == "" {
		in.Type = models.CustomerTypeCustomer
	}
	if !in.Type.Valid() {
		return nil, invalidf("unknown customer type %q", in.Type)
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, invalidf("name is required")
	}

	customer := &models.Customer{
		UserID: requester.ID,
		Name:   strings.TrimSpace(in.Name),
		Email:  strings.TrimSpace(in.Email),
		Phone:  in.Phone,
		Type:   in.Type,
	}
	if err := s.store.CreateCustomer(ctx, customer); err != nil {
		slog.Error("CreateCustomer failed", "error", err)
		return nil, err
	}

	slog.Info("Customer created", "customer_id", customer.ID)
	return customer, nil
}

// List returns the requester's customers, or every customer for a super-admin.
func (s *CustomerService) List(ctx context.Context, requester *models.User, page storage.Page) ([]*models.Customer, error) {
	if err := requireUser(requester); err != nil {
		return nil, err
	}

	customers, err := s.store.ListCustomers(ctx, storage.CustomerFilter{
		UserID: ownerScope(requester),
		Page:   page,
	})
	if err != nil {
		slog.Error("ListCustomers failed", "error", err)
		return nil, err
	}

	slog.Info("ListCustomers successful", "count", len(customers))
	return customers, nil
}

// Get returns a customer the requester may access.
func (s *CustomerService) Get(ctx context.Context, requester *models.User, id string) (*models.Customer, error) {
	customer, err := s.store.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(requester, customer.UserID); err != nil {
		slog.Warn("GetCustomer denied", "customer_id", id, "error", err)
		return nil, err
	}
	return customer, nil
}

// Update changes a customer the requester may access.
func (s *CustomerService) Update(ctx context.Context, requester *models.User, id string, in CustomerUpdate) (*models.Customer, error) {
	customer, err := s.Get(ctx, requester, id)
	if err != nil {
		return nil, err
	}
	slog.Info("UpdateCustomer request received", "customer_id", id)

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, invalidf("name cannot be empty")
		}
		customer.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		customer.Email = strings.TrimSpace(*in.Email)
	}
	if in.Phone != nil {
		customer.Phone = in.Phone
	}
	if in.Type != nil {
		if !in.Type.Valid() {
			return nil, invalidf("unknown customer type %q", *in.Type)
		}
		customer.Type = *in.Type
	}

	if err := s.store.UpdateCustomer(ctx, customer); err != nil {
		slog.Error("UpdateCustomer failed", "customer_id", id, "error", err)
		return nil, err
	}

	slog.Info("Customer updated", "customer_id", id)
	return s.store.GetCustomer(ctx, id)
}

// Delete removes a customer the requester may access. A customer that still
// has invoices cannot be deleted.
func (s *CustomerService) Delete(ctx context.Context, requester *models.User, id string) error {
	if _, err := s.Get(ctx, requester, id); err != nil {
		return err
	}
	if err := s.store.DeleteCustomer(ctx, id); err != nil {
		slog.Warn("DeleteCustomer failed", "customer_id", id, "error", err)
		return err
	}

	slog.Info("Customer deleted", "customer_id", id)
	return nil
}
