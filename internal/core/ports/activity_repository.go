package ports

import (
	"context"

	"github.com/devconnector/connector-api/internal/core/domain"
)

// ActivityRepository persists the activity audit trail.
type ActivityRepository interface {
	Insert(ctx context.Context, activity *domain.Activity) error
}
