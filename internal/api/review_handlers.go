package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/biblio-app/biblio-server/internal/domain"
	"github.com/biblio-app/biblio-server/internal/service"
)

func (s *Server) registerReviewRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listReviews",
		Method:      http.MethodGet,
		Path:        "/api/books/{id}/recensioni",
		Summary:     "List reviews",
		Description: "Returns a book's reviews, most recent first.",
		Tags:        []string{"Reviews"},
	}, s.handleListReviews)

	huma.Register(s.api, huma.Operation{
		OperationID:   "addReview",
		Method:        http.MethodPost,
		Path:          "/api/books/{id}/recensioni",
		Summary:       "Add review",
		Description:   "Attaches a review to a book. Only the book's owner can add reviews.",
		Tags:          []string{"Reviews"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleAddReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteReview",
		Method:      http.MethodDelete,
		Path:        "/api/books/{id}/recensioni/{reviewId}",
		Summary:     "Delete review",
		Description: "Removes a review from a book. Only the book's owner can delete reviews.",
		Tags:        []string{"Reviews"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteReview)
}

// === DTOs ===

// AddReviewInput wraps the add-review request for Huma.
type AddReviewInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body AnnotationRequest
}

// ReviewIDInput identifies a review within a book.
type ReviewIDInput struct {
	ID       string `path:"id" doc:"Book ID"`
	ReviewID string `path:"reviewId" doc:"Review ID"`
}

// ReviewResponse contains review information in API responses.
type ReviewResponse struct {
	ID        string    `json:"id" doc:"Review ID"`
	Testo     string    `json:"testo" doc:"Text"`
	LibroID   string    `json:"libro_id" doc:"Book ID"`
	CreatedAt time.Time `json:"created_at" doc:"Creation timestamp"`
}

// ReviewOutput wraps a single review for Huma.
type ReviewOutput struct {
	Body ReviewResponse
}

// ReviewListResponse contains a book's reviews.
type ReviewListResponse struct {
	Reviews []ReviewResponse `json:"recensioni" doc:"Reviews"`
	Total   int              `json:"total" doc:"Number of reviews"`
}

// ReviewListOutput wraps a review list for Huma.
type ReviewListOutput struct {
	Body ReviewListResponse
}

// === Handlers ===

func (s *Server) handleListReviews(ctx context.Context, input *BookIDInput) (*ReviewListOutput, error) {
	reviews, err := s.services.Book.ListReviews(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	out := make([]ReviewResponse, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, mapReviewResponse(r))
	}

	return &ReviewListOutput{Body: ReviewListResponse{Reviews: out, Total: len(out)}}, nil
}

func (s *Server) handleAddReview(ctx context.Context, input *AddReviewInput) (*ReviewOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	review, err := s.services.Book.AddReview(ctx, userID, input.ID, service.AnnotationRequest{
		Testo: input.Body.Testo,
	})
	if err != nil {
		return nil, err
	}

	return &ReviewOutput{Body: mapReviewResponse(review)}, nil
}

func (s *Server) handleDeleteReview(ctx context.Context, input *ReviewIDInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Book.DeleteReview(ctx, userID, input.ID, input.ReviewID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Recensione eliminata"}}, nil
}

// === Helpers ===

func mapReviewResponse(r *domain.Review) ReviewResponse {
	return ReviewResponse{
		ID:        r.ID,
		Testo:     r.Testo,
		LibroID:   r.LibroID,
		CreatedAt: r.CreatedAt,
	}
}
