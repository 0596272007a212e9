package database

import (
	"context"
	"strings"

	"github.com/nfrund/eventhub/internal/config"
	"github.com/nfrund/eventhub/internal/domain"
)

var _ domain.UserRepository = (*UserStore)(nil)

// UserStore implements domain.UserRepository.
type UserStore struct {
	client Client[domain.User]
}

// NewUserStore creates a user store over conn.
func NewUserStore(conn Conn, cfg config.Provider, opts ...ClientOption[domain.User]) (*UserStore, error) {
	client, err := NewClient[domain.User](conn, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &UserStore{client: client}, nil
}

// Create inserts a user. Emails are unique; a duplicate yields
// domain.ErrUserAlreadyExists.
func (s *UserStore) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user == nil || user.Email == "" {
		return nil, NewDBError(ErrInvalidInput, "user email is required")
	}
	existing, err := s.client.QueryOne(ctx, "SELECT * FROM user WHERE email = $email LIMIT 1", map[string]any{"email": user.Email})
	if err != nil {
		return nil, WrapError(err, "create user")
	}
	if existing != nil {
		return nil, domain.ErrUserAlreadyExists
	}

	data := map[string]any{
		"email":         user.Email,
		"password_hash": user.PasswordHash,
	}
	if user.Name != nil {
		data["name"] = *user.Name
	}
	if user.Avatar != nil {
		data["avatar"] = *user.Avatar
	}
	created, err := s.client.QueryOne(ctx, "CREATE user CONTENT $data", map[string]any{"data": data})
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "already contains") {
			return nil, domain.ErrUserAlreadyExists
		}
		return nil, WrapError(err, "create user")
	}
	if created == nil {
		return nil, NewDBError(ErrNotFound, "create user returned no record")
	}
	return created, nil
}

// GetByID returns the user with record id "user:<key>".
func (s *UserStore) GetByID(ctx context.Context, id string) (*domain.User, error) {
	key, err := splitRecordID(id, tableUser)
	if err != nil {
		return nil, err
	}
	user, err := s.client.QueryOne(ctx, "SELECT * FROM type::thing($tb, $key)", map[string]any{"tb": tableUser, "key": key})
	if err != nil {
		return nil, WrapError(err, "get user")
	}
	if user == nil {
		return nil, NewDBError(ErrNotFound, "user "+id)
	}
	return user, nil
}

// FindUserByEmail returns the user registered with email.
func (s *UserStore) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.client.QueryOne(ctx, "SELECT * FROM user WHERE email = $email LIMIT 1", map[string]any{"email": email})
	if err != nil {
		return nil, WrapError(err, "find user by email")
	}
	if user == nil {
		return nil, NewDBError(ErrNotFound, "user with email")
	}
	return user, nil
}
