package sqlite

import (
	"context"

	"github.com/biblio-app/biblio-server/internal/domain"
)

// quoteColumns is the ordered list of columns selected in quote queries.
// Must match the scan order in scanQuote.
const quoteColumns = `id, testo, libro_id, created_at`

// scanQuote scans a sql.Row (or sql.Rows via its Scan method) into a domain.Quote.
func scanQuote(scanner interface{ Scan(dest ...any) error }) (*domain.Quote, error) {
	var q domain.Quote
	var createdAt string

	err := scanner.Scan(&q.ID, &q.Testo, &q.LibroID, &createdAt)
	if err != nil {
		return nil, err
	}

	q.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	return &q, nil
}

// CreateQuote inserts a new quote. The referenced book must exist; the
// ownership gate happens in the service layer before this is called.
func (s *Store) CreateQuote(ctx context.Context, quote *domain.Quote) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO citazioni (id, testo, libro_id, created_at)
		VALUES (?, ?, ?, ?)`,
		quote.ID,
		quote.Testo,
		quote.LibroID,
		formatTime(quote.CreatedAt),
	)
	return err
}

// ListQuotesByBook returns a book's quotes, most recent first.
func (s *Store) ListQuotesByBook(ctx context.Context, bookID string) ([]*domain.Quote, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+quoteColumns+` FROM citazioni WHERE libro_id = ? ORDER BY created_at DESC, id DESC`,
		bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quotes []*domain.Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return quotes, nil
}

// DeleteQuote removes the quote only when it belongs to bookID. Predicating
// on both IDs keeps a valid quote ID under someone else's book from matching.
func (s *Store) DeleteQuote(ctx context.Context, bookID, quoteID string) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM citazioni WHERE id = ? AND libro_id = ?`, quoteID, bookID)
	if err != nil {
		return false, err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
