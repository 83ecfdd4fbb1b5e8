package api

import (
	"context"
	"net/http"
	"net/url"

	"karsdrive/internal/domain"
)

// UserRepository defines the backend operations for driver accounts.
type UserRepository interface {
	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// Login finds the account matching login and password. Only
	// driver accounts are accepted.
	Login(ctx context.Context, login, password string) (*domain.User, error)

	// Register creates a new driver account.
	Register(ctx context.Context, user *domain.User) (*domain.User, error)

	// Patch applies a partial update and returns the server's stored
	// representation.
	Patch(ctx context.Context, id string, patch UserPatch) (*domain.User, error)

	// Delete removes the account.
	Delete(ctx context.Context, id string) error
}

// UserPatch is a partial update of the mutable user fields. Nil fields
// are left untouched by the server.
type UserPatch struct {
	OnOrder  *string `json:"onOrder,omitempty"`
	IsActive *bool   `json:"isActive,omitempty"`
}

// Users is the HTTP implementation of UserRepository.
type Users struct {
	client *Client
}

// NewUsers creates a user repository over the given client.
func NewUsers(client *Client) *Users {
	return &Users{client: client}
}

var _ UserRepository = (*Users)(nil)

// GetByID retrieves a user by ID.
func (r *Users) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	if err := r.client.doJSON(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login finds the account matching login and password. The backend has
// no token auth: a matching row is the whole check.
func (r *Users) Login(ctx context.Context, login, password string) (*domain.User, error) {
	q := url.Values{
		"login":    {login},
		"password": {password},
	}

	var users []*domain.User
	if err := r.client.doJSON(ctx, http.MethodGet, "/users?"+q.Encode(), nil, &users); err != nil {
		return nil, err
	}

	if len(users) == 0 {
		return nil, ErrInvalidCredentials
	}

	user := users[0]
	if user.Role != domain.RoleDriver {
		return nil, ErrWrongRole
	}

	return user, nil
}

// Register creates a new driver account and returns the stored record.
func (r *Users) Register(ctx context.Context, user *domain.User) (*domain.User, error) {
	var created domain.User
	if err := r.client.doJSON(ctx, http.MethodPost, "/users", user, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Patch applies a partial update and returns the stored user.
func (r *Users) Patch(ctx context.Context, id string, patch UserPatch) (*domain.User, error) {
	var user domain.User
	if err := r.client.doJSON(ctx, http.MethodPatch, "/users/"+url.PathEscape(id), patch, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Delete removes the account.
func (r *Users) Delete(ctx context.Context, id string) error {
	return r.client.doJSON(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), nil, nil)
}
