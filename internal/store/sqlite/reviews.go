package sqlite

import (
	"context"

	"github.com/biblio-app/biblio-server/internal/domain"
)

// reviewColumns is the ordered list of columns selected in review queries.
// Must match the scan order in scanReview.
const reviewColumns = `id, testo, libro_id, created_at`

// scanReview scans a sql.Row (or sql.Rows via its Scan method) into a domain.Review.
func scanReview(scanner interface{ Scan(dest ...any) error }) (*domain.Review, error) {
	var r domain.Review
	var createdAt string

	err := scanner.Scan(&r.ID, &r.Testo, &r.LibroID, &createdAt)
	if err != nil {
		return nil, err
	}

	r.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	return &r, nil
}

// CreateReview inserts a new review. The referenced book must exist; the
// ownership gate happens in the service layer before this is called.
func (s *Store) CreateReview(ctx context.Context, review *domain.Review) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO recensioni (id, testo, libro_id, created_at)
		VALUES (?, ?, ?, ?)`,
		review.ID,
		review.Testo,
		review.LibroID,
		formatTime(review.CreatedAt),
	)
	return err
}

// ListReviewsByBook returns a book's reviews, most recent first.
func (s *Store) ListReviewsByBook(ctx context.Context, bookID string) ([]*domain.Review, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+reviewColumns+` FROM recensioni WHERE libro_id = ? ORDER BY created_at DESC, id DESC`,
		bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []*domain.Review
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reviews, nil
}

// DeleteReview removes the review only when it belongs to bookID, mirroring
// the two-ID predicate used for quotes.
func (s *Store) DeleteReview(ctx context.Context, bookID, reviewID string) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM recensioni WHERE id = ? AND libro_id = ?`, reviewID, bookID)
	if err != nil {
		return false, err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
