package domain

import (
	"context"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// User represents the core user model in the application domain.
type User struct {
	ID           *surrealmodels.RecordID `json:"id,omitempty"`
	Email        string                  `json:"email"`
	Name         *string                 `json:"name,omitempty"`
	Avatar       *string                 `json:"avatar,omitempty"`
	PasswordHash string                  `json:"password_hash,omitempty"`
}

// DisplayName returns the user's name, falling back to the local part of the email.
func (u *User) DisplayName() string {
	if u.Name != nil && *u.Name != "" {
		return *u.Name
	}
	for i, r := range u.Email {
		if r == '@' {
			return u.Email[:i]
		}
	}
	return u.Email
}

// UserRepository defines the contract for user data storage operations.
// It lives in the domain because it's a requirement OF the domain, not
// of the database implementation.
type UserRepository interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	FindUserByEmail(ctx context.Context, email string) (*User, error)
}
