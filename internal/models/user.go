package models

import "time"

// User represents a registered user account.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string `gorm:"primaryKey;size:36" json:"id"`

	// Name is the display name of the user.
	Name string `gorm:"size:100;not null" json:"name"`

	// Email is the user's email address (unique). Used for login.
	Email string `gorm:"size:100;uniqueIndex;not null" json:"email"`

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string `gorm:"size:255;not null" json:"-"`

	// IsSuperAdmin grants access to every record regardless of owner.
	IsSuperAdmin bool `gorm:"not null;default:false" json:"is_super_admin"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser creates a user with the given identity and password hash.
// ID and timestamps are assigned by the store.
func NewUser(name, email, passwordHash string) *User {
	return &User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
	}
}

// Owns reports whether the user is the owner referenced by ownerID.
func (u *User) Owns(ownerID string) bool {
	return u != nil && u.ID == ownerID
}
