package gormstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mmynk/invoicer/internal/models"
	"github.com/mmynk/invoicer/internal/storage"
)

// CreateCustomer persists a new customer.
func (s *Store) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	if customer.ID == "" {
		customer.ID = uuid.New().String()
	}
	if customer.Type == "" {
		customer.Type = models.CustomerTypeCustomer
	}

	if err := s.db.WithContext(ctx).Create(customer).Error; err != nil {
		return fmt.Errorf("failed to insert customer: %w", translateError(err))
	}
	return nil
}

// GetCustomer retrieves a customer by ID.
func (s *Store) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	customer := &models.Customer{}
	if err := s.db.WithContext(ctx).First(customer, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", translateError(err))
	}
	return customer, nil
}

// ListCustomers retrieves customers, optionally restricted to one owner.
func (s *Store) ListCustomers(ctx context.Context, filter storage.CustomerFilter) ([]*models.Customer, error) {
	page := filter.Page.Normalize()

	q := s.db.WithContext(ctx).Model(&models.Customer{})
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}

	var customers []*models.Customer
	err := q.Order("created_at ASC, id ASC").Offset(page.Skip).Limit(page.Limit).Find(&customers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, nil
}

// UpdateCustomer saves the mutable customer fields.
func (s *Store) UpdateCustomer(ctx context.Context, customer *models.Customer) error {
	res := s.db.WithContext(ctx).
		Model(&models.Customer{ID: customer.ID}).
		Select("name", "email", "phone", "type").
		Updates(&models.Customer{
			Name:  customer.Name,
			Email: customer.Email,
			Phone: customer.Phone,
			Type:  customer.Type,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update customer: %w", translateError(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("customer %s: %w", customer.ID, storage.ErrNotFound)
	}
	return nil
}

// DeleteCustomer removes a customer. A customer that still has invoices
// cannot be removed and yields storage.ErrConflict.
func (s *Store) DeleteCustomer(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.Customer{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete customer: %w", translateError(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("customer %s: %w", id, storage.ErrNotFound)
	}
	return nil
}
