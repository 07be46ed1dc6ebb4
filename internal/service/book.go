package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/biblio-app/biblio-server/internal/domain"
	domainerrors "github.com/biblio-app/biblio-server/internal/errors"
	"github.com/biblio-app/biblio-server/internal/id"
	"github.com/biblio-app/biblio-server/internal/store"
	"github.com/biblio-app/biblio-server/internal/validation"
)

// Messages reused across the ownership-scoped mutations. A failed book
// mutation never says whether the book exists, only that nothing matched
// for this caller.
const (
	msgBookNotFoundOrUnauthorized = "Libro non trovato o non autorizzato"
	msgBookNotFound               = "Libro non trovato"
)

// BookService implements the catalog operations. Every mutation is scoped
// to the authenticated owner; reads are public.
type BookService struct {
	store     store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewBookService creates a new book service.
func NewBookService(st store.Store, validator *validation.Validator, logger *slog.Logger) *BookService {
	return &BookService{
		store:     st,
		validator: validator,
		logger:    logger,
	}
}

// CreateBookRequest contains the fields accepted when creating a book.
// Stato is optional and defaults to "da leggere".
type CreateBookRequest struct {
	Titolo string `json:"titolo" validate:"required,min=1,max=500"`
	Autore string `json:"autore" validate:"required,min=1,max=200"`
	Stato  string `json:"stato,omitempty"`
}

// UpdateBookRequest contains the replacement fields for a book update.
type UpdateBookRequest struct {
	Titolo string `json:"titolo" validate:"required,min=1,max=500"`
	Autore string `json:"autore" validate:"required,min=1,max=200"`
	Stato  string `json:"stato" validate:"required"`
}

// AnnotationRequest carries the text of a new quote or review.
type AnnotationRequest struct {
	Testo string `json:"testo" validate:"required,min=1,max=5000"`
}

// resolveStatus validates a raw status value against the closed enum.
// Empty means "use the default" when allowEmpty is set.
func resolveStatus(raw string, allowEmpty bool) (domain.Status, error) {
	if strings.TrimSpace(raw) == "" {
		if allowEmpty {
			return domain.DefaultStatus, nil
		}
		return "", domainerrors.Validation("stato is required")
	}

	status, ok := domain.NormalizeStatus(raw)
	if !ok {
		return "", domainerrors.Validationf("stato must be one of: %v", domain.ValidStatuses())
	}
	return status, nil
}

// Create adds a book to the caller's shelf. The owner always comes from the
// authenticated identity, never from the request body.
func (s *BookService) Create(ctx context.Context, ownerID string, req CreateBookRequest) (*domain.Book, error) {
	// Trim before validating so whitespace-only fields fail min=1.
	req.Titolo = strings.TrimSpace(req.Titolo)
	req.Autore = strings.TrimSpace(req.Autore)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	status, err := resolveStatus(req.Stato, true)
	if err != nil {
		return nil, err
	}

	bookID, err := id.Generate("book")
	if err != nil {
		return nil, fmt.Errorf("generate book ID: %w", err)
	}

	book := &domain.Book{
		ID:       bookID,
		Titolo:   req.Titolo,
		Autore:   req.Autore,
		Stato:    status,
		UtenteID: ownerID,
	}
	book.InitTimestamps()

	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}

	s.logger.Info("Book created", "book_id", bookID, "user_id", ownerID)

	return book, nil
}

// ListAll returns the whole catalog, newest first.
func (s *BookService) ListAll(ctx context.Context) ([]*domain.Book, error) {
	return s.store.ListBooks(ctx)
}

// ListMine returns the caller's books, newest first.
func (s *BookService) ListMine(ctx context.Context, ownerID string) ([]*domain.Book, error) {
	return s.store.ListBooksByOwner(ctx, ownerID)
}

// Get returns a single book by ID.
func (s *BookService) Get(ctx context.Context, bookID string) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound(msgBookNotFound)
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return book, nil
}

// Update replaces a book's fields. Ownership is enforced by the store's
// WHERE predicate; a zero-row result comes back as a single combined
// not-found-or-unauthorized error so callers can't enumerate other users'
// book IDs.
func (s *BookService) Update(ctx context.Context, ownerID, bookID string, req UpdateBookRequest) (*domain.Book, error) {
	req.Titolo = strings.TrimSpace(req.Titolo)
	req.Autore = strings.TrimSpace(req.Autore)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	status, err := resolveStatus(req.Stato, false)
	if err != nil {
		return nil, err
	}

	upd := domain.BookUpdate{
		Titolo: req.Titolo,
		Autore: req.Autore,
		Stato:  status,
	}

	ok, err := s.store.UpdateBook(ctx, bookID, upd, ownerID)
	if err != nil {
		return nil, fmt.Errorf("update book: %w", err)
	}
	if !ok {
		return nil, domainerrors.NotFound(msgBookNotFoundOrUnauthorized)
	}

	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("reload book: %w", err)
	}

	s.logger.Info("Book updated", "book_id", bookID, "user_id", ownerID)

	return book, nil
}

// DeleteCascade removes a book and everything hanging off it. The store
// runs the whole cascade in one transaction; a no-match result maps to
// the same combined error as Update.
func (s *BookService) DeleteCascade(ctx context.Context, ownerID, bookID string) error {
	ok, err := s.store.DeleteBookCascade(ctx, bookID, ownerID)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	if !ok {
		return domainerrors.NotFound(msgBookNotFoundOrUnauthorized)
	}

	s.logger.Info("Book deleted", "book_id", bookID, "user_id", ownerID)

	return nil
}

// Stats returns the caller's shelf aggregated by reading state.
func (s *BookService) Stats(ctx context.Context, ownerID string) (*domain.BookStats, error) {
	counts, err := s.store.GetBookStatsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("book stats: %w", err)
	}

	stats := domain.BuildBookStats(counts)
	return &stats, nil
}

// requireOwnedBook loads a book and verifies the caller owns it. Unlike the
// predicate mutations this deliberately distinguishes missing from
// forbidden: annotation writes gate on a book the caller can already see.
func (s *BookService) requireOwnedBook(ctx context.Context, callerID, bookID string) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound(msgBookNotFound)
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	if !book.IsOwnedBy(callerID) {
		return nil, domainerrors.Forbidden("Non autorizzato")
	}
	return book, nil
}

// ListQuotes returns a book's quotes, most recent first. Reads are public
// but the book must exist.
func (s *BookService) ListQuotes(ctx context.Context, bookID string) ([]*domain.Quote, error) {
	if _, err := s.Get(ctx, bookID); err != nil {
		return nil, err
	}
	return s.store.ListQuotesByBook(ctx, bookID)
}

// AddQuote attaches a quote to a book owned by the caller.
func (s *BookService) AddQuote(ctx context.Context, callerID, bookID string, req AnnotationRequest) (*domain.Quote, error) {
	req.Testo = strings.TrimSpace(req.Testo)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if _, err := s.requireOwnedBook(ctx, callerID, bookID); err != nil {
		return nil, err
	}

	quoteID, err := id.Generate("quote")
	if err != nil {
		return nil, fmt.Errorf("generate quote ID: %w", err)
	}

	quote := &domain.Quote{
		ID:        quoteID,
		Testo:     req.Testo,
		LibroID:   bookID,
		CreatedAt: time.Now(),
	}

	if err := s.store.CreateQuote(ctx, quote); err != nil {
		return nil, fmt.Errorf("create quote: %w", err)
	}

	s.logger.Info("Quote added", "quote_id", quoteID, "book_id", bookID)

	return quote, nil
}

// DeleteQuote removes a quote from a book owned by the caller. The store
// delete is additionally predicated on the book ID, so a quote ID borrowed
// from another book never matches.
func (s *BookService) DeleteQuote(ctx context.Context, callerID, bookID, quoteID string) error {
	if _, err := s.requireOwnedBook(ctx, callerID, bookID); err != nil {
		return err
	}

	ok, err := s.store.DeleteQuote(ctx, bookID, quoteID)
	if err != nil {
		return fmt.Errorf("delete quote: %w", err)
	}
	if !ok {
		return domainerrors.NotFound("Citazione non trovata")
	}

	s.logger.Info("Quote deleted", "quote_id", quoteID, "book_id", bookID)

	return nil
}

// ListReviews returns a book's reviews, most recent first. Reads are public
// but the book must exist.
func (s *BookService) ListReviews(ctx context.Context, bookID string) ([]*domain.Review, error) {
	if _, err := s.Get(ctx, bookID); err != nil {
		return nil, err
	}
	return s.store.ListReviewsByBook(ctx, bookID)
}

// AddReview attaches a review to a book owned by the caller.
func (s *BookService) AddReview(ctx context.Context, callerID, bookID string, req AnnotationRequest) (*domain.Review, error) {
	req.Testo = strings.TrimSpace(req.Testo)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if _, err := s.requireOwnedBook(ctx, callerID, bookID); err != nil {
		return nil, err
	}

	reviewID, err := id.Generate("rev")
	if err != nil {
		return nil, fmt.Errorf("generate review ID: %w", err)
	}

	review := &domain.Review{
		ID:        reviewID,
		Testo:     req.Testo,
		LibroID:   bookID,
		CreatedAt: time.Now(),
	}

	if err := s.store.CreateReview(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.logger.Info("Review added", "review_id", reviewID, "book_id", bookID)

	return review, nil
}

// DeleteReview removes a review from a book owned by the caller.
func (s *BookService) DeleteReview(ctx context.Context, callerID, bookID, reviewID string) error {
	if _, err := s.requireOwnedBook(ctx, callerID, bookID); err != nil {
		return err
	}

	ok, err := s.store.DeleteReview(ctx, bookID, reviewID)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if !ok {
		return domainerrors.NotFound("Recensione non trovata")
	}

	s.logger.Info("Review deleted", "review_id", reviewID, "book_id", bookID)

	return nil
}
