package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmynk/invoicer/internal/auth"
	"github.com/mmynk/invoicer/internal/models"
	"github.com/mmynk/invoicer/internal/storage"
)

// UserUpdate carries the fields to change; nil fields are left as they are.
type UserUpdate struct {
	Name         *string
	Email        *string
	Password     *string
	IsSuperAdmin *bool
}

// UserService manages user accounts.
type UserService struct {
	store         storage.UserStore
	authenticator auth.Authenticator
}

// NewUserService creates a new UserService.
func NewUserService(store storage.UserStore, authenticator auth.Authenticator) *UserService {
	return &UserService{store: store, authenticator: authenticator}
}

// List returns all users. Super-admin only.
func (s *UserService) List(ctx context.Context, requester *models.User, page storage.Page) ([]*models.User, error) {
	if err := requireAdmin(requester); err != nil {
		return nil, err
	}

	users, err := s.store.ListUsers(ctx, page)
	if err != nil {
		slog.Error("ListUsers failed", "error", err)
		return nil, err
	}
	return users, nil
}

// Get returns a user. Users may read themselves; super-admins anyone.
func (s *UserService) Get(ctx context.Context, requester *models.User, id string) (*models.User, error) {
	if err := authorize(requester, id); err != nil {
		return nil, err
	}
	return s.store.GetUserByID(ctx, id)
}

// Update changes a user. Only a super-admin may change the admin flag.
func (s *UserService) Update(ctx context.Context, requester *models.User, id string, in UserUpdate) (*models.User, error) {
	if err := authorize(requester, id); err != nil {
		slog.Warn("UpdateUser denied", "user_id", id, "error", err)
		return nil, err
	}
	slog.Info("UpdateUser request received", "user_id", id, "requester", requester.ID)

	if in.IsSuperAdmin != nil && !requester.IsSuperAdmin {
		return nil, ErrForbidden
	}

	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, invalidf("name cannot be empty")
		}
		user.Name = name
	}
	if in.Email != nil {
		email := auth.NormalizeEmail(*in.Email)
		if email == "" {
			return nil, invalidf("email cannot be empty")
		}
		if email != user.Email {
			other, err := s.store.GetUserByEmail(ctx, email)
			switch {
			case err == nil && other.ID != user.ID:
				return nil, auth.ErrEmailExists
			case err != nil && !errors.Is(err, storage.ErrNotFound):
				return nil, fmt.Errorf("failed to check email: %w", err)
			}
		}
		user.Email = email
	}
	if in.Password != nil {
		hash, err := s.authenticator.HashCredential(*in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if in.IsSuperAdmin != nil {
		user.IsSuperAdmin = *in.IsSuperAdmin
	}

	if err := s.store.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, auth.ErrEmailExists
		}
		slog.Error("UpdateUser failed", "user_id", id, "error", err)
		return nil, err
	}

	slog.Info("UpdateUser successful", "user_id", id)
	return s.store.GetUserByID(ctx, id)
}

// Delete removes a user and everything they own. Super-admin only.
func (s *UserService) Delete(ctx context.Context, requester *models.User, id string) error {
	slog.Info("DeleteUser request received", "user_id", id)

	if err := requireAdmin(requester); err != nil {
		slog.Warn("DeleteUser denied", "user_id", id)
		return err
	}
	if err := s.store.DeleteUser(ctx, id); err != nil {
		return err
	}

	slog.Info("DeleteUser successful", "user_id", id)
	return nil
}

// SetSuperAdmin grants or revokes super-admin by email. It performs no
// access check and is meant for operator tooling.
func (s *UserService) SetSuperAdmin(ctx context.Context, email string, admin bool) (*models.User, error) {
	user, err := s.store.GetUserByEmail(ctx, auth.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}

	user.IsSuperAdmin = admin
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	slog.Info("Super-admin flag changed", "user_id", user.ID, "email", user.Email, "is_super_admin", admin)
	return user, nil
}
