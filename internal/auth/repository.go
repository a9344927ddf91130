package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Sentinel errors the service layer translates into API errors.
var (
	ErrUserExists   = errors.New("username or email already taken")
	ErrUserNotFound = errors.New("user not found")
)

// Repository is the persistence boundary for accounts and their
// role-derived permissions.
type Repository interface {
	CreateUser(ctx context.Context, username, email, passwordHash, role string) (User, error)
	GetUserByUsername(ctx context.Context, username string) (User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
	PermissionsForRole(ctx context.Context, role string) ([]string, error)
}
