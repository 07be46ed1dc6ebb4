package domain

import (
	"strings"
	"time"
)

// Status represents a book's reading state. The catalog started life in
// Italian and the wire values stay that way for client compatibility.
type Status string

const (
	// StatusToRead marks a book that hasn't been started yet.
	StatusToRead Status = "da leggere"
	// StatusReading marks a book currently being read.
	StatusReading Status = "in lettura"
	// StatusRead marks a finished book.
	StatusRead Status = "letto"
)

// DefaultStatus is assigned when a book is created without a status.
const DefaultStatus = StatusToRead

// IsValid reports whether s is one of the three recognized states.
func (s Status) IsValid() bool {
	switch s {
	case StatusToRead, StatusReading, StatusRead:
		return true
	}
	return false
}

// ValidStatuses returns the closed set of accepted states, for error messages.
func ValidStatuses() []Status {
	return []Status{StatusToRead, StatusReading, StatusRead}
}

// NormalizeStatus maps historical spellings of a state onto the canonical
// Status. Older clients wrote underscores, hyphens, English labels, and
// mixed case; rows written by them still exist. Returns ok=false when the
// value matches none of the known spellings.
func NormalizeStatus(raw string) (Status, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")

	switch s {
	case "da leggere", "to read":
		return StatusToRead, true
	case "in lettura", "reading":
		return StatusReading, true
	case "letto", "read":
		return StatusRead, true
	}
	return "", false
}

// Book represents a catalog entry owned by a single user.
type Book struct {
	ID        string    `json:"id"`
	Titolo    string    `json:"titolo"`
	Autore    string    `json:"autore"`
	Stato     Status    `json:"stato"`
	UtenteID  string    `json:"utente_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InitTimestamps sets both CreatedAt and UpdatedAt to now.
// Call this when creating a new book.
func (b *Book) InitTimestamps() {
	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now
}

// Touch updates the UpdatedAt timestamp to the current time.
func (b *Book) Touch() {
	b.UpdatedAt = time.Now()
}

// IsOwnedBy reports whether userID owns this book.
func (b *Book) IsOwnedBy(userID string) bool {
	return b.UtenteID == userID
}

// BookUpdate carries the replacement field values for a book update.
// Stato must already be canonical; ownership is enforced by the caller.
type BookUpdate struct {
	Titolo string
	Autore string
	Stato  Status
}
