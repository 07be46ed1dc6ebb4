package domain

import "time"

// Quote is a passage saved against a book. Quotes belong to the book, not
// to the reader who typed them, and are deleted with the book.
type Quote struct {
	ID        string    `json:"id"`
	Testo     string    `json:"testo"`
	LibroID   string    `json:"libro_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Review is free-form commentary on a book. Same lifecycle as Quote.
type Review struct {
	ID        string    `json:"id"`
	Testo     string    `json:"testo"`
	LibroID   string    `json:"libro_id"`
	CreatedAt time.Time `json:"created_at"`
}
