package domain

import "time"

// Principal is the authenticated identity reconstructed from a verified token.
// It lives for a single request and is never persisted.
type Principal struct {
	ID        string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
