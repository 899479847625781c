package ports

import (
	"context"
	"encoding/json"
	"time"

	"github.com/devconnector/connector-api/internal/core/domain"
)

// ExperienceInput is a new experience entry.
type ExperienceInput struct {
	Title       string
	Company     string
	Location    string
	From        time.Time
	To          *time.Time
	Current     bool
	Description string
}

// EducationInput is a new education entry.
type EducationInput struct {
	School       string
	Degree       string
	FieldOfStudy string
	From         time.Time
	To           *time.Time
	Current      bool
	Description  string
}

type ProfileService interface {
	Me(ctx context.Context, principal domain.Principal) (*domain.Profile, error)
	Upsert(ctx context.Context, principal domain.Principal, fields domain.ProfileFields) (*domain.Profile, error)
	List(ctx context.Context) ([]*domain.Profile, error)
	ByUser(ctx context.Context, userID string) (*domain.Profile, error)
	// DeleteAccount removes the principal's posts, profile and user record, in
	// that order, then revokes the presented token.
	DeleteAccount(ctx context.Context, principal domain.Principal) error

	AddExperience(ctx context.Context, principal domain.Principal, in ExperienceInput) (*domain.Profile, error)
	DeleteExperience(ctx context.Context, principal domain.Principal, expID string) (*domain.Profile, error)
	AddEducation(ctx context.Context, principal domain.Principal, in EducationInput) (*domain.Profile, error)
	DeleteEducation(ctx context.Context, principal domain.Principal, eduID string) (*domain.Profile, error)

	GitHubRepos(ctx context.Context, username string) (json.RawMessage, error)
}
