package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/biblio-app/biblio-server/internal/domain"
	"github.com/biblio-app/biblio-server/internal/service"
)

func (s *Server) registerQuoteRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listQuotes",
		Method:      http.MethodGet,
		Path:        "/api/books/{id}/citazioni",
		Summary:     "List quotes",
		Description: "Returns a book's quotes, most recent first.",
		Tags:        []string{"Quotes"},
	}, s.handleListQuotes)

	huma.Register(s.api, huma.Operation{
		OperationID:   "addQuote",
		Method:        http.MethodPost,
		Path:          "/api/books/{id}/citazioni",
		Summary:       "Add quote",
		Description:   "Attaches a quote to a book. Only the book's owner can add quotes.",
		Tags:          []string{"Quotes"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleAddQuote)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteQuote",
		Method:      http.MethodDelete,
		Path:        "/api/books/{id}/citazioni/{quoteId}",
		Summary:     "Delete quote",
		Description: "Removes a quote from a book. Only the book's owner can delete quotes.",
		Tags:        []string{"Quotes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteQuote)
}

// === DTOs ===

// AnnotationRequest is the request body for adding a quote or review.
type AnnotationRequest struct {
	Testo string `json:"testo" validate:"required,min=1,max=5000" doc:"Text"`
}

// AddQuoteInput wraps the add-quote request for Huma.
type AddQuoteInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body AnnotationRequest
}

// QuoteIDInput identifies a quote within a book.
type QuoteIDInput struct {
	ID      string `path:"id" doc:"Book ID"`
	QuoteID string `path:"quoteId" doc:"Quote ID"`
}

// QuoteResponse contains quote information in API responses.
type QuoteResponse struct {
	ID        string    `json:"id" doc:"Quote ID"`
	Testo     string    `json:"testo" doc:"Text"`
	LibroID   string    `json:"libro_id" doc:"Book ID"`
	CreatedAt time.Time `json:"created_at" doc:"Creation timestamp"`
}

// QuoteOutput wraps a single quote for Huma.
type QuoteOutput struct {
	Body QuoteResponse
}

// QuoteListResponse contains a book's quotes.
type QuoteListResponse struct {
	Quotes []QuoteResponse `json:"citazioni" doc:"Quotes"`
	Total  int             `json:"total" doc:"Number of quotes"`
}

// QuoteListOutput wraps a quote list for Huma.
type QuoteListOutput struct {
	Body QuoteListResponse
}

// === Handlers ===

func (s *Server) handleListQuotes(ctx context.Context, input *BookIDInput) (*QuoteListOutput, error) {
	quotes, err := s.services.Book.ListQuotes(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	out := make([]QuoteResponse, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, mapQuoteResponse(q))
	}

	return &QuoteListOutput{Body: QuoteListResponse{Quotes: out, Total: len(out)}}, nil
}

func (s *Server) handleAddQuote(ctx context.Context, input *AddQuoteInput) (*QuoteOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	quote, err := s.services.Book.AddQuote(ctx, userID, input.ID, service.AnnotationRequest{
		Testo: input.Body.Testo,
	})
	if err != nil {
		return nil, err
	}

	return &QuoteOutput{Body: mapQuoteResponse(quote)}, nil
}

func (s *Server) handleDeleteQuote(ctx context.Context, input *QuoteIDInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Book.DeleteQuote(ctx, userID, input.ID, input.QuoteID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Citazione eliminata"}}, nil
}

// === Helpers ===

func mapQuoteResponse(q *domain.Quote) QuoteResponse {
	return QuoteResponse{
		ID:        q.ID,
		Testo:     q.Testo,
		LibroID:   q.LibroID,
		CreatedAt: q.CreatedAt,
	}
}
