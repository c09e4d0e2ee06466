package domain

import (
	"fmt"
	"strings"
	"time"
)

// UserStatus represents the lifecycle status of an application user
type UserStatus string

const (
	UserStatusInvited   UserStatus = "invited"
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusDisabled  UserStatus = "disabled"
)

// AppUser represents an application user. Identity lifecycle is owned by the
// external identity provider; the core reads users for report denormalization
// and audit attribution.
type AppUser struct {
	ID         int64
	SubjectUID string // external identity-provider subject
	Email      string
	FullName   string
	IsAdmin    bool
	Status     UserStatus
	CreatedAt  time.Time
}

// Validate ensures the user adheres to domain rules
func (u *AppUser) Validate() error {
	if u.SubjectUID == "" {
		return fmt.Errorf("user subject uid cannot be empty: %w", ErrValidation)
	}
	if u.Email == "" {
		return fmt.Errorf("user email cannot be empty: %w", ErrValidation)
	}
	switch u.Status {
	case UserStatusInvited, UserStatusActive, UserStatusSuspended, UserStatusDisabled:
		return nil
	default:
		return fmt.Errorf("unknown user status %q: %w", u.Status, ErrValidation)
	}
}

// Account belongs to exactly one AppUser and has a unique account number.
// Identifiers are immutable once created.
type Account struct {
	ID            int64
	UserID        int64
	AccountNumber string
	CreatedAt     time.Time
}

// Validate ensures the account adheres to domain rules
func (a *Account) Validate() error {
	if a.UserID == 0 {
		return fmt.Errorf("account must belong to a user: %w", ErrValidation)
	}
	if a.AccountNumber == "" {
		return fmt.Errorf("account number cannot be empty: %w", ErrValidation)
	}
	return nil
}

// Fund is a named investment vehicle with a 3-letter currency code.
// Immutable once referenced by movements.
type Fund struct {
	ID        int64
	Name      string
	Currency  string
	CreatedAt time.Time
}

// Validate ensures the fund adheres to domain rules
func (f *Fund) Validate() error {
	if f.Name == "" {
		return fmt.Errorf("fund name cannot be empty: %w", ErrValidation)
	}
	if len(f.Currency) != 3 || f.Currency != strings.ToUpper(f.Currency) {
		return fmt.Errorf("fund currency must be a 3-letter uppercase code: %w", ErrValidation)
	}
	return nil
}
