package repository

import (
	"context"

	"github.com/oksasatya/blood-donor-registry/internal/domain/entity"
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	// Create stores a new user. Returns ErrDuplicateEmail when the email is taken.
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	// GetByEmail matches the email exactly, case included.
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
}
