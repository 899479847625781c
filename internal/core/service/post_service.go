package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/devconnector/connector-api/internal/core/domain"
	"github.com/devconnector/connector-api/internal/core/policy"
	"github.com/devconnector/connector-api/internal/core/ports"
)

type PostService struct {
	posts    ports.PostRepository
	users    ports.UserRepository
	activity ActivitySink
	log      zerolog.Logger
}

func NewPostService(posts ports.PostRepository, users ports.UserRepository, activity ActivitySink, log zerolog.Logger) *PostService {
	return &PostService{posts: posts, users: users, activity: normalizeSink(activity), log: log}
}

// Create publishes a post under the principal's current name and avatar.
func (s *PostService) Create(ctx context.Context, principal domain.Principal, text string) (*domain.Post, error) {
	author, err := s.users.FindByID(ctx, principal.ID)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	post, err := s.posts.Create(ctx, &domain.Post{
		User:      principal.ID,
		Text:      strings.TrimSpace(text),
		Name:      author.Name,
		Avatar:    author.Avatar,
		Likes:     []domain.Like{},
		Comments:  []domain.Comment{},
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		s.log.Error().Err(err).Msg("failed to create post")
		return nil, fmt.Errorf("create post: %w", err)
	}

	s.log.Info().Str("post_id", post.ID).Str("user_id", principal.ID).Msg("post created")
	s.record(principal, domain.ActionPostCreated, post.ID)
	return post, nil
}

// List returns every post, newest first.
func (s *PostService) List(ctx context.Context) ([]*domain.Post, error) {
	posts, err := s.posts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func (s *PostService) Get(ctx context.Context, postID string) (*domain.Post, error) {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	return post, nil
}

// Delete removes a post. Only its author may do so.
func (s *PostService) Delete(ctx context.Context, principal domain.Principal, postID string) error {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if err := policy.CanDeletePost(principal, post); err != nil {
		s.log.Warn().Str("post_id", postID).Str("user_id", principal.ID).Msg("post delete denied")
		return err
	}

	if err := s.posts.Delete(ctx, postID); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	s.record(principal, domain.ActionPostDeleted, postID)
	return nil
}

// Like adds the principal's like and returns the updated likes.
func (s *PostService) Like(ctx context.Context, principal domain.Principal, postID string) ([]domain.Like, error) {
	if err := accountExists(ctx, s.users, principal); err != nil {
		return nil, fmt.Errorf("like post: %w", err)
	}
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("like post: %w", err)
	}
	if err := policy.CanLike(principal, post); err != nil {
		return nil, err
	}

	// The repository re-checks atomically; a concurrent like surfaces as
	// domain.ErrAlreadyLiked here.
	likes, err := s.posts.AddLike(ctx, postID, domain.Like{User: principal.ID})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyLiked) || errors.Is(err, domain.ErrPostNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("like post: %w", err)
	}

	s.record(principal, domain.ActionPostLiked, postID)
	return likes, nil
}

// Unlike removes the principal's like and returns the updated likes.
func (s *PostService) Unlike(ctx context.Context, principal domain.Principal, postID string) ([]domain.Like, error) {
	if err := accountExists(ctx, s.users, principal); err != nil {
		return nil, fmt.Errorf("unlike post: %w", err)
	}
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("unlike post: %w", err)
	}
	if err := policy.CanUnlike(principal, post); err != nil {
		return nil, err
	}

	likes, err := s.posts.RemoveLike(ctx, postID, principal.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotLiked) || errors.Is(err, domain.ErrPostNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("unlike post: %w", err)
	}

	s.record(principal, domain.ActionPostUnliked, postID)
	return likes, nil
}

// Comment prepends a comment and returns the updated comments.
func (s *PostService) Comment(ctx context.Context, principal domain.Principal, postID, text string) ([]domain.Comment, error) {
	author, err := s.users.FindByID(ctx, principal.ID)
	if err != nil {
		return nil, fmt.Errorf("comment: %w", err)
	}
	if _, err := s.posts.FindByID(ctx, postID); err != nil {
		return nil, fmt.Errorf("comment: %w", err)
	}

	comments, err := s.posts.AddComment(ctx, postID, domain.Comment{
		User:      principal.ID,
		Text:      strings.TrimSpace(text),
		Name:      author.Name,
		Avatar:    author.Avatar,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("comment: %w", err)
	}

	s.record(principal, domain.ActionCommentAdded, postID)
	return comments, nil
}

// DeleteComment removes a comment. Only the comment's author may do so.
func (s *PostService) DeleteComment(ctx context.Context, principal domain.Principal, postID, commentID string) ([]domain.Comment, error) {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("delete comment: %w", err)
	}

	comment, ok := post.Comment(commentID)
	if !ok {
		return nil, domain.ErrCommentNotFound
	}
	if err := policy.CanDeleteComment(principal, comment); err != nil {
		s.log.Warn().Str("comment_id", commentID).Str("user_id", principal.ID).Msg("comment delete denied")
		return nil, err
	}

	comments, err := s.posts.RemoveComment(ctx, postID, commentID, principal.ID)
	if err != nil {
		if errors.Is(err, domain.ErrCommentNotFound) || errors.Is(err, domain.ErrPostNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("delete comment: %w", err)
	}

	s.record(principal, domain.ActionCommentRemoved, postID)
	return comments, nil
}

func (s *PostService) record(principal domain.Principal, action domain.ActivityAction, resourceID string) {
	s.activity.Enqueue(domain.Activity{
		UserID:     principal.ID,
		Action:     action,
		ResourceID: resourceID,
		OccurredAt: time.Now().UTC(),
	})
}

// accountExists rejects principals whose user record is gone, such as a
// second unexpired token of a deleted account.
func accountExists(ctx context.Context, users ports.UserRepository, principal domain.Principal) error {
	_, err := users.FindByID(ctx, principal.ID)
	return err
}
