package domain

import "errors"

// Session errors.
var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
	ErrSigningKey   = errors.New("token signing key not configured")
)

// Credential errors.
var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
)

// Ownership and state errors raised by the guard.
var (
	ErrNotAuthorized = errors.New("user not authorized")
	ErrAlreadyLiked  = errors.New("post already liked")
	ErrNotLiked      = errors.New("post not liked")
)

// Resource lookup errors.
var (
	ErrProfileNotFound    = errors.New("profile not found")
	ErrPostNotFound       = errors.New("post not found")
	ErrCommentNotFound    = errors.New("comment not found")
	ErrExperienceNotFound = errors.New("experience not found")
	ErrEducationNotFound  = errors.New("education not found")
	ErrReposNotFound      = errors.New("github repositories not found")
)
