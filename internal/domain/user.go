// Package domain contains the core business entities and domain logic for the Biblio catalog.
package domain

import "time"

// User represents a registered account in the catalog.
type User struct {
	ID           string    `json:"id"`
	Nome         string    `json:"nome"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Stored hashed, never serialized
	CreatedAt    time.Time `json:"created_at"`
}

// PublicUser is the projection of a user that is safe to return from the API.
type PublicUser struct {
	ID    string `json:"id"`
	Nome  string `json:"nome"`
	Email string `json:"email"`
}

// Public returns the API-safe projection of the user.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:    u.ID,
		Nome:  u.Nome,
		Email: u.Email,
	}
}
