package domain

import "time"

// User is a registered account as held in the credential store.
type User struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Avatar       string    `json:"avatar"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"date"`
}

// UserRef is the public projection of a user embedded in profiles.
type UserRef struct {
	ID     string `json:"_id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}
