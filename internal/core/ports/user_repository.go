package ports

import (
	"context"

	"github.com/devconnector/connector-api/internal/core/domain"
)

// UserRepository is the credential store.
type UserRepository interface {
	// Create inserts the user and returns it with its ID set.
	// Returns domain.ErrUserExists when the email is taken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}
