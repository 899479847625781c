package ports

import (
	"context"

	"github.com/devconnector/connector-api/internal/core/domain"
)

type PostService interface {
	Create(ctx context.Context, principal domain.Principal, text string) (*domain.Post, error)
	List(ctx context.Context) ([]*domain.Post, error)
	Get(ctx context.Context, postID string) (*domain.Post, error)
	Delete(ctx context.Context, principal domain.Principal, postID string) error

	Like(ctx context.Context, principal domain.Principal, postID string) ([]domain.Like, error)
	Unlike(ctx context.Context, principal domain.Principal, postID string) ([]domain.Like, error)

	Comment(ctx context.Context, principal domain.Principal, postID, text string) ([]domain.Comment, error)
	DeleteComment(ctx context.Context, principal domain.Principal, postID, commentID string) ([]domain.Comment, error)
}
