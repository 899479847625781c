// Package policy holds the resource ownership rules. Every check is a pure
// function of the principal and an already-fetched resource, so callers run
// it after the read and before any write.
package policy

import "github.com/devconnector/connector-api/internal/core/domain"

// CanModifyProfile allows only the profile's owner.
func CanModifyProfile(p domain.Principal, profile *domain.Profile) error {
	if profile == nil || p.ID == "" || profile.Owner != p.ID {
		return domain.ErrNotAuthorized
	}
	return nil
}

// CanDeletePost allows only the post's author.
func CanDeletePost(p domain.Principal, post *domain.Post) error {
	if post == nil || p.ID == "" || post.User != p.ID {
		return domain.ErrNotAuthorized
	}
	return nil
}

// CanDeleteComment allows only the comment's author, not the post's author.
func CanDeleteComment(p domain.Principal, comment *domain.Comment) error {
	if comment == nil || p.ID == "" || comment.User != p.ID {
		return domain.ErrNotAuthorized
	}
	return nil
}

// CanLike is a state check: a principal holds at most one like per post.
func CanLike(p domain.Principal, post *domain.Post) error {
	if post.LikedBy(p.ID) {
		return domain.ErrAlreadyLiked
	}
	return nil
}

// CanUnlike requires an existing like from the principal.
func CanUnlike(p domain.Principal, post *domain.Post) error {
	if !post.LikedBy(p.ID) {
		return domain.ErrNotLiked
	}
	return nil
}
