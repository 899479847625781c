package ports

import (
	"context"

	"github.com/devconnector/connector-api/internal/core/domain"
)

// ProfileRepository persists profiles. Returned profiles have User populated.
type ProfileRepository interface {
	FindByOwner(ctx context.Context, ownerID string) (*domain.Profile, error)
	List(ctx context.Context) ([]*domain.Profile, error)
	// Upsert creates the owner's profile or overwrites its scalar fields.
	Upsert(ctx context.Context, ownerID string, fields domain.ProfileFields) (*domain.Profile, error)
	DeleteByOwner(ctx context.Context, ownerID string) error

	// Experience and education entries are prepended. Remove* returns
	// domain.ErrExperienceNotFound / domain.ErrEducationNotFound when no entry
	// with that id exists on the owner's profile.
	PushExperience(ctx context.Context, ownerID string, exp domain.Experience) (*domain.Profile, error)
	RemoveExperience(ctx context.Context, ownerID, expID string) (*domain.Profile, error)
	PushEducation(ctx context.Context, ownerID string, edu domain.Education) (*domain.Profile, error)
	RemoveEducation(ctx context.Context, ownerID, eduID string) (*domain.Profile, error)
}
