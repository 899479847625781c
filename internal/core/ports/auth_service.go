package ports

import (
	"context"

	"github.com/devconnector/connector-api/internal/core/domain"
)

type AuthService interface {
	Register(ctx context.Context, name, email, password string) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
	Me(ctx context.Context, principal domain.Principal) (*domain.User, error)
	Logout(ctx context.Context, principal domain.Principal) error
}
