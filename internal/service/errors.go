package service

import (
	"errors"
	"fmt"

	"github.com/mmynk/invoicer/internal/auth"
	"github.com/mmynk/invoicer/internal/models"
)

var (
	// ErrForbidden is returned when the requester may not act on a record.
	ErrForbidden = errors.New("not enough permissions")

	// ErrInvalidInput is returned for input that passes decoding but breaks
	// a domain rule.
	ErrInvalidInput = errors.New("invalid input")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// authorize permits the owner of a record and any super-admin.
func authorize(requester *models.User, ownerID string) error {
	if requester == nil {
		return auth.ErrMissingToken
	}
	if requester.IsSuperAdmin || requester.Owns(ownerID) {
		return nil
	}
	return ErrForbidden
}

func requireUser(requester *models.User) error {
	if requester == nil {
		return auth.ErrMissingToken
	}
	return nil
}

func requireAdmin(requester *models.User) error {
	if requester == nil {
		return auth.ErrMissingToken
	}
	if !requester.IsSuperAdmin {
		return ErrForbidden
	}
	return nil
}

// ownerScope is the owner filter for listings: none for a super-admin,
// the requester otherwise.
func ownerScope(requester *models.User) string {
	if requester.IsSuperAdmin {
		return ""
	}
	return requester.ID
}
