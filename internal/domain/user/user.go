package user

import (
	"errors"
	"net/mail"
	"strings"
	"time"
)

// User is the domain view of an identity, mapped from the auth store's
// record by the RPC client. The domain never depends on the auth schema.
type User struct {
	ID        string
	CreatedAt time.Time
	Email     string
	Role      Role
	Status    Status
}

var ErrInvalidEmail = errors.New("invalid email address")

// NewUser constructs and validates a domain user.
func NewUser(id, email string, role Role, status Status) (*User, error) {
	user := &User{
		ID:     strings.TrimSpace(id),
		Email:  strings.TrimSpace(email),
		Role:   role,
		Status: status,
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	return user, nil
}

// Validate checks invariants of the User entity.
func (user *User) Validate() error {
	if user.ID == "" {
		return errors.New("user id is required")
	}
	if _, err := mail.ParseAddress(user.Email); err != nil {
		return ErrInvalidEmail
	}
	if !user.Role.Valid() {
		return ErrInvalidRole
	}
	if !user.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

// Convenience helpers.
func (user *User) IsActive() bool    { return user.Status.IsActive() }
func (user *User) IsDriver() bool    { return user.Role.IsDriver() }
func (user *User) IsPassenger() bool { return user.Role.IsPassenger() }

// Validation is the result of the identity validation RPC.
type Validation struct {
	Exists  bool
	Valid   bool
	Profile *User
}
