// Package store defines the persistence interface for the Biblio server.
package store

import (
	"context"

	"github.com/biblio-app/biblio-server/internal/domain"
)

// Store defines the interface for all persistence operations.
type Store interface {
	// Lifecycle
	Close() error

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// Books
	CreateBook(ctx context.Context, book *domain.Book) error
	GetBook(ctx context.Context, id string) (*domain.Book, error)
	ListBooks(ctx context.Context) ([]*domain.Book, error)
	ListBooksByOwner(ctx context.Context, ownerID string) ([]*domain.Book, error)
	// UpdateBook applies upd to the book only when ownerID owns it.
	// Returns false with a nil error when no row matched, absent and
	// not-owned being deliberately indistinguishable.
	UpdateBook(ctx context.Context, id string, upd domain.BookUpdate, ownerID string) (bool, error)
	// DeleteBookCascade removes the book and its quotes and reviews in a
	// single transaction, with the same (false, nil) contract as UpdateBook.
	DeleteBookCascade(ctx context.Context, id string, ownerID string) (bool, error)
	GetBookStatsByOwner(ctx context.Context, ownerID string) ([]domain.StatusCount, error)

	// Quotes
	CreateQuote(ctx context.Context, quote *domain.Quote) error
	ListQuotesByBook(ctx context.Context, bookID string) ([]*domain.Quote, error)
	// DeleteQuote removes the quote only when it belongs to bookID.
	DeleteQuote(ctx context.Context, bookID, quoteID string) (bool, error)

	// Reviews
	CreateReview(ctx context.Context, review *domain.Review) error
	ListReviewsByBook(ctx context.Context, bookID string) ([]*domain.Review, error)
	// DeleteReview removes the review only when it belongs to bookID.
	DeleteReview(ctx context.Context, bookID, reviewID string) (bool, error)
}
