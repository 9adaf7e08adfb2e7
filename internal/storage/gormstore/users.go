package gormstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mmynk/invoicer/internal/models"
	"github.com/mmynk/invoicer/internal/storage"
)

// CreateUser inserts a new user into the database.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	// Generate ID if not set
	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", translateError(err))
	}
	return nil
}

// GetUserByID retrieves a user by their ID.
func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	user := &models.User{}
	if err := s.db.WithContext(ctx).First(user, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", translateError(err))
	}
	return user, nil
}

// GetUserByEmail retrieves a user by their email address.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	if err := s.db.WithContext(ctx).First(user, "email = ?", email).Error; err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", translateError(err))
	}
	return user, nil
}

// ListUsers returns users in creation order.
func (s *Store) ListUsers(ctx context.Context, page storage.Page) ([]*models.User, error) {
	page = page.Normalize()

	var users []*models.User
	err := s.db.WithContext(ctx).
		Order("created_at ASC, id ASC").
		Offset(page.Skip).
		Limit(page.Limit).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// UpdateUser saves the mutable user fields.
func (s *Store) UpdateUser(ctx context.Context, user *models.User) error {
	res := s.db.WithContext(ctx).
		Model(&models.User{ID: user.ID}).
		Select("name", "email", "password_hash", "is_super_admin").
		Updates(&models.User{
			Name:         user.Name,
			Email:        user.Email,
			PasswordHash: user.PasswordHash,
			IsSuperAdmin: user.IsSuperAdmin,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update user: %w", translateError(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %s: %w", user.ID, storage.ErrNotFound)
	}
	return nil
}

// DeleteUser removes a user and, through cascading keys, everything they own.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete user: %w", translateError(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %s: %w", id, storage.ErrNotFound)
	}
	return nil
}
