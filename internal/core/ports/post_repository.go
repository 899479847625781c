package ports

import (
	"context"

	"github.com/devconnector/connector-api/internal/core/domain"
)

// PostRepository persists posts. List mutations are single conditional
// updates so concurrent likes and comments cannot overwrite each other.
type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) (*domain.Post, error)
	FindByID(ctx context.Context, id string) (*domain.Post, error)
	// List returns all posts, newest first.
	List(ctx context.Context) ([]*domain.Post, error)
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) (int64, error)

	// AddLike prepends a like unless userID already liked the post
	// (domain.ErrAlreadyLiked). RemoveLike returns domain.ErrNotLiked when
	// there is nothing to remove.
	AddLike(ctx context.Context, postID string, like domain.Like) ([]domain.Like, error)
	RemoveLike(ctx context.Context, postID, userID string) ([]domain.Like, error)

	AddComment(ctx context.Context, postID string, comment domain.Comment) ([]domain.Comment, error)
	// RemoveComment deletes the comment only if it is authored by userID.
	RemoveComment(ctx context.Context, postID, commentID, userID string) ([]domain.Comment, error)
}
