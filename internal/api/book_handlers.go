package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/biblio-app/biblio-server/internal/domain"
	"github.com/biblio-app/biblio-server/internal/service"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createBook",
		Method:        http.MethodPost,
		Path:          "/api/books",
		Summary:       "Create book",
		Description:   "Adds a book to the authenticated user's shelf.",
		Tags:          []string{"Books"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/books",
		Summary:     "List all books",
		Description: "Returns the whole catalog across all users.",
		Tags:        []string{"Books"},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "listMyBooks",
		Method:      http.MethodGet,
		Path:        "/api/books/me/mine",
		Summary:     "List own books",
		Description: "Returns the authenticated user's books.",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListMyBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "bookStats",
		Method:      http.MethodGet,
		Path:        "/api/books/me/stats",
		Summary:     "Shelf statistics",
		Description: "Returns the authenticated user's books aggregated by reading state.",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleBookStats)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/books/{id}",
		Summary:     "Get book",
		Tags:        []string{"Books"},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBook",
		Method:      http.MethodPut,
		Path:        "/api/books/{id}",
		Summary:     "Update book",
		Description: "Replaces a book's fields. Only the owner can update a book.",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteBook",
		Method:      http.MethodDelete,
		Path:        "/api/books/{id}",
		Summary:     "Delete book",
		Description: "Deletes a book together with its quotes and reviews. Only the owner can delete a book.",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteBook)
}

// === DTOs ===

// BookRequest is the request body for creating or updating a book.
type BookRequest struct {
	Titolo string `json:"titolo" validate:"required,min=1,max=500" doc:"Title"`
	Autore string `json:"autore" validate:"required,min=1,max=200" doc:"Author"`
	Stato  string `json:"stato,omitempty" doc:"Reading state: da leggere, in lettura, letto"`
}

// CreateBookInput wraps the create request for Huma.
type CreateBookInput struct {
	Body BookRequest
}

// UpdateBookInput wraps the update request for Huma.
type UpdateBookInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body BookRequest
}

// BookIDInput identifies a book by path parameter.
type BookIDInput struct {
	ID string `path:"id" doc:"Book ID"`
}

// BookResponse contains book information in API responses.
type BookResponse struct {
	ID        string    `json:"id" doc:"Book ID"`
	Titolo    string    `json:"titolo" doc:"Title"`
	Autore    string    `json:"autore" doc:"Author"`
	Stato     string    `json:"stato" doc:"Reading state"`
	UtenteID  string    `json:"utente_id" doc:"Owner user ID"`
	CreatedAt time.Time `json:"created_at" doc:"Creation timestamp"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update timestamp"`
}

// BookOutput wraps a single book for Huma.
type BookOutput struct {
	Body BookResponse
}

// BookListResponse contains a list of books.
type BookListResponse struct {
	Books []BookResponse `json:"books" doc:"Books"`
	Total int            `json:"total" doc:"Number of books returned"`
}

// BookListOutput wraps a book list for Huma.
type BookListOutput struct {
	Body BookListResponse
}

// BookStatsResponse contains shelf statistics by reading state.
type BookStatsResponse struct {
	Total   int            `json:"total" doc:"Total number of books"`
	ToRead  int            `json:"da_leggere" doc:"Books not started yet"`
	Reading int            `json:"in_lettura" doc:"Books currently being read"`
	Read    int            `json:"letto" doc:"Finished books"`
	Other   int            `json:"other,omitempty" doc:"Books with unrecognized states"`
	ByState map[string]int `json:"by_state" doc:"Raw counts keyed by normalized state"`
}

// BookStatsOutput wraps the stats response for Huma.
type BookStatsOutput struct {
	Body BookStatsResponse
}

// MessageResponse contains a simple message.
type MessageResponse struct {
	Message string `json:"message" doc:"Success message"`
}

// MessageOutput wraps the message response for Huma.
type MessageOutput struct {
	Body MessageResponse
}

// === Handlers ===

func (s *Server) handleCreateBook(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Book.Create(ctx, userID, service.CreateBookRequest{
		Titolo: input.Body.Titolo,
		Autore: input.Body.Autore,
		Stato:  input.Body.Stato,
	})
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: mapBookResponse(book)}, nil
}

func (s *Server) handleListBooks(ctx context.Context, _ *struct{}) (*BookListOutput, error) {
	books, err := s.services.Book.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	return &BookListOutput{Body: mapBookListResponse(books)}, nil
}

func (s *Server) handleListMyBooks(ctx context.Context, _ *struct{}) (*BookListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	books, err := s.services.Book.ListMine(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &BookListOutput{Body: mapBookListResponse(books)}, nil
}

func (s *Server) handleBookStats(ctx context.Context, _ *struct{}) (*BookStatsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	stats, err := s.services.Book.Stats(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &BookStatsOutput{
		Body: BookStatsResponse{
			Total:   stats.Total,
			ToRead:  stats.ToRead,
			Reading: stats.Reading,
			Read:    stats.Read,
			Other:   stats.Other,
			ByState: stats.ByState,
		},
	}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *BookIDInput) (*BookOutput, error) {
	book, err := s.services.Book.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: mapBookResponse(book)}, nil
}

func (s *Server) handleUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Book.Update(ctx, userID, input.ID, service.UpdateBookRequest{
		Titolo: input.Body.Titolo,
		Autore: input.Body.Autore,
		Stato:  input.Body.Stato,
	})
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: mapBookResponse(book)}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *BookIDInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Book.DeleteCascade(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Libro eliminato"}}, nil
}

// === Helpers ===

func mapBookResponse(b *domain.Book) BookResponse {
	return BookResponse{
		ID:        b.ID,
		Titolo:    b.Titolo,
		Autore:    b.Autore,
		Stato:     string(b.Stato),
		UtenteID:  b.UtenteID,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func mapBookListResponse(books []*domain.Book) BookListResponse {
	out := make([]BookResponse, 0, len(books))
	for _, b := range books {
		out = append(out, mapBookResponse(b))
	}
	return BookListResponse{Books: out, Total: len(out)}
}
