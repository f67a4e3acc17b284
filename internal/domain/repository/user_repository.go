package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/blogilista/internal/domain/entity"
)

var (
	// ErrNotFound is returned when a lookup by identifier or key matches nothing.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write violates a uniqueness constraint.
	ErrConflict = errors.New("conflict")
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	// FindByUsername returns every user with the given username. Uniqueness is
	// enforced on write, so callers normally see zero or one result.
	FindByUsername(ctx context.Context, username string) ([]entity.User, error)
	List(ctx context.Context) ([]entity.User, error)
	// ListByIDs returns the users with the given ids. Unknown ids are skipped.
	ListByIDs(ctx context.Context, ids []string) ([]entity.User, error)
}
