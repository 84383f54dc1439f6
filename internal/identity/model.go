package identity

import (
	"errors"
	"time"

	"github.com/Shaanrahman123/driver-tracker/internal/session"
)

var (
	// ErrNotFound is returned when no user matches a lookup.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicate is returned when an email or phone is already taken.
	ErrDuplicate = errors.New("user with this email or phone already exists")
	// ErrInvalidInput is returned when required fields are missing.
	ErrInvalidInput = errors.New("invalid user input")
)

// User represents a fleet administrator or driver account.
type User struct {
	ID           int64
	Name         string
	Email        string
	Phone        string
	Gender       string
	PasswordHash []byte
	Role         string
	CreatedAt    time.Time
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool { return u.Role == session.RoleAdmin }

// Subject converts the user into the identity a session is issued for.
func (u User) Subject() session.Subject {
	return session.Subject{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

// DriverInput carries the fields an administrator supplies for a driver.
type DriverInput struct {
	Name     string
	Email    string
	Phone    string
	Gender   string
	Password string
}

// DriverUpdate carries the editable fields of an existing driver.
type DriverUpdate struct {
	ID     int64
	Name   string
	Email  string
	Phone  string
	Gender string
}

// SignupInput is the self-service registration payload.
type SignupInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
}
