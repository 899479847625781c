package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/devconnector/connector-api/internal/core/domain"
	"github.com/devconnector/connector-api/internal/core/policy"
	"github.com/devconnector/connector-api/internal/core/ports"
)

// ProfileService manages profiles and the account-level cascade delete.
type ProfileService struct {
	profiles ports.ProfileRepository
	posts    ports.PostRepository
	users    ports.UserRepository
	revoker  ports.TokenRevoker
	github   ports.RepoFetcher
	activity ActivitySink
	log      zerolog.Logger
}

func NewProfileService(
	profiles ports.ProfileRepository,
	posts ports.PostRepository,
	users ports.UserRepository,
	revoker ports.TokenRevoker,
	github ports.RepoFetcher,
	activity ActivitySink,
	log zerolog.Logger,
) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		posts:    posts,
		users:    users,
		revoker:  revoker,
		github:   github,
		activity: normalizeSink(activity),
		log:      log,
	}
}

func (s *ProfileService) Me(ctx context.Context, principal domain.Principal) (*domain.Profile, error) {
	profile, err := s.profiles.FindByOwner(ctx, principal.ID)
	if err != nil {
		return nil, fmt.Errorf("profile me: %w", err)
	}
	return profile, nil
}

// Upsert creates the principal's profile or updates the supplied fields of
// the existing one.
func (s *ProfileService) Upsert(ctx context.Context, principal domain.Principal, fields domain.ProfileFields) (*domain.Profile, error) {
	fields = cleanFields(fields)

	if err := accountExists(ctx, s.users, principal); err != nil {
		return nil, fmt.Errorf("upsert profile: %w", err)
	}

	existing, err := s.profiles.FindByOwner(ctx, principal.ID)
	switch {
	case err == nil:
		if err := policy.CanModifyProfile(principal, existing); err != nil {
			return nil, err
		}
	case !errors.Is(err, domain.ErrProfileNotFound):
		return nil, fmt.Errorf("upsert profile: %w", err)
	}

	profile, err := s.profiles.Upsert(ctx, principal.ID, fields)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", principal.ID).Msg("failed to save profile")
		return nil, fmt.Errorf("upsert profile: %w", err)
	}

	s.record(principal, domain.ActionProfileSaved, profile.ID)
	return profile, nil
}

func (s *ProfileService) List(ctx context.Context) ([]*domain.Profile, error) {
	profiles, err := s.profiles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, nil
}

func (s *ProfileService) ByUser(ctx context.Context, userID string) (*domain.Profile, error) {
	profile, err := s.profiles.FindByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("profile by user: %w", err)
	}
	return profile, nil
}

// DeleteAccount removes posts, then profile, then user. A missing profile is
// not an error; accounts can exist before their profile does.
func (s *ProfileService) DeleteAccount(ctx context.Context, principal domain.Principal) error {
	removed, err := s.posts.DeleteByUser(ctx, principal.ID)
	if err != nil {
		return fmt.Errorf("delete account: posts: %w", err)
	}

	if err := s.profiles.DeleteByOwner(ctx, principal.ID); err != nil && !errors.Is(err, domain.ErrProfileNotFound) {
		return fmt.Errorf("delete account: profile: %w", err)
	}

	if err := s.users.Delete(ctx, principal.ID); err != nil {
		return fmt.Errorf("delete account: user: %w", err)
	}

	// The account is gone either way; a stale token can no longer resolve
	// to a user.
	if err := s.revoker.Revoke(ctx, principal); err != nil {
		s.log.Warn().Err(err).Str("user_id", principal.ID).Msg("failed to revoke token after account delete")
	}

	s.log.Info().Str("user_id", principal.ID).Int64("posts_removed", removed).Msg("account deleted")
	s.record(principal, domain.ActionAccountDeleted, principal.ID)
	return nil
}

func (s *ProfileService) AddExperience(ctx context.Context, principal domain.Principal, in ports.ExperienceInput) (*domain.Profile, error) {
	if err := s.guard(ctx, principal); err != nil {
		return nil, fmt.Errorf("add experience: %w", err)
	}

	profile, err := s.profiles.PushExperience(ctx, principal.ID, domain.Experience{
		Title:       strings.TrimSpace(in.Title),
		Company:     strings.TrimSpace(in.Company),
		Location:    strings.TrimSpace(in.Location),
		From:        in.From.UTC(),
		To:          utcPtr(in.To),
		Current:     in.Current,
		Description: strings.TrimSpace(in.Description),
	})
	if err != nil {
		return nil, fmt.Errorf("add experience: %w", err)
	}

	s.record(principal, domain.ActionProfileSaved, profile.ID)
	return profile, nil
}

func (s *ProfileService) DeleteExperience(ctx context.Context, principal domain.Principal, expID string) (*domain.Profile, error) {
	if err := s.guard(ctx, principal); err != nil {
		return nil, fmt.Errorf("delete experience: %w", err)
	}

	profile, err := s.profiles.RemoveExperience(ctx, principal.ID, expID)
	if err != nil {
		return nil, fmt.Errorf("delete experience: %w", err)
	}

	s.record(principal, domain.ActionProfileSaved, profile.ID)
	return profile, nil
}

func (s *ProfileService) AddEducation(ctx context.Context, principal domain.Principal, in ports.EducationInput) (*domain.Profile, error) {
	if err := s.guard(ctx, principal); err != nil {
		return nil, fmt.Errorf("add education: %w", err)
	}

	profile, err := s.profiles.PushEducation(ctx, principal.ID, domain.Education{
		School:       strings.TrimSpace(in.School),
		Degree:       strings.TrimSpace(in.Degree),
		FieldOfStudy: strings.TrimSpace(in.FieldOfStudy),
		From:         in.From.UTC(),
		To:           utcPtr(in.To),
		Current:      in.Current,
		Description:  strings.TrimSpace(in.Description),
	})
	if err != nil {
		return nil, fmt.Errorf("add education: %w", err)
	}

	s.record(principal, domain.ActionProfileSaved, profile.ID)
	return profile, nil
}

func (s *ProfileService) DeleteEducation(ctx context.Context, principal domain.Principal, eduID string) (*domain.Profile, error) {
	if err := s.guard(ctx, principal); err != nil {
		return nil, fmt.Errorf("delete education: %w", err)
	}

	profile, err := s.profiles.RemoveEducation(ctx, principal.ID, eduID)
	if err != nil {
		return nil, fmt.Errorf("delete education: %w", err)
	}

	s.record(principal, domain.ActionProfileSaved, profile.ID)
	return profile, nil
}

// GitHubRepos returns the public repositories of a GitHub user.
func (s *ProfileService) GitHubRepos(ctx context.Context, username string) (json.RawMessage, error) {
	username = strings.TrimSpace(username)
	if username == "" || s.github == nil {
		return nil, domain.ErrReposNotFound
	}

	repos, err := s.github.Repos(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrReposNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("github repos: %w", err)
	}
	return repos, nil
}

// guard fetches the principal's profile and checks it may be modified.
func (s *ProfileService) guard(ctx context.Context, principal domain.Principal) error {
	profile, err := s.profiles.FindByOwner(ctx, principal.ID)
	if err != nil {
		return err
	}
	return policy.CanModifyProfile(principal, profile)
}

func (s *ProfileService) record(principal domain.Principal, action domain.ActivityAction, resourceID string) {
	s.activity.Enqueue(domain.Activity{
		UserID:     principal.ID,
		Action:     action,
		ResourceID: resourceID,
		OccurredAt: time.Now().UTC(),
	})
}

func cleanFields(f domain.ProfileFields) domain.ProfileFields {
	f.Company = strings.TrimSpace(f.Company)
	f.Website = strings.TrimSpace(f.Website)
	f.Location = strings.TrimSpace(f.Location)
	f.Bio = strings.TrimSpace(f.Bio)
	f.Status = strings.TrimSpace(f.Status)
	f.GitHubUsername = strings.TrimSpace(f.GitHubUsername)
	f.Social.YouTube = strings.TrimSpace(f.Social.YouTube)
	f.Social.Twitter = strings.TrimSpace(f.Social.Twitter)
	f.Social.Facebook = strings.TrimSpace(f.Social.Facebook)
	f.Social.LinkedIn = strings.TrimSpace(f.Social.LinkedIn)
	f.Social.Instagram = strings.TrimSpace(f.Social.Instagram)

	skills := make([]string, 0, len(f.Skills))
	for _, skill := range f.Skills {
		if skill = strings.TrimSpace(skill); skill != "" {
			skills = append(skills, skill)
		}
	}
	f.Skills = skills
	return f
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}
