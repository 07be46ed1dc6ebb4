package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/biblio-app/biblio-server/internal/domain"
	"github.com/biblio-app/biblio-server/internal/store"
)

// bookColumns is the ordered list of columns selected in book queries.
// Must match the scan order in scanBook.
const bookColumns = `id, titolo, autore, stato, utente_id, created_at, updated_at`

// scanBook scans a sql.Row (or sql.Rows via its Scan method) into a domain.Book.
func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var b domain.Book
	var stato, createdAt, updatedAt string

	err := scanner.Scan(
		&b.ID,
		&b.Titolo,
		&b.Autore,
		&stato,
		&b.UtenteID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.Stato = domain.Status(stato)

	b.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	b.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &b, nil
}

// CreateBook inserts a new book into the database.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO libri (id, titolo, autore, stato, utente_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		book.ID,
		book.Titolo,
		book.Autore,
		string(book.Stato),
		book.UtenteID,
		formatTime(book.CreatedAt),
		formatTime(book.UpdatedAt),
	)
	return err
}

// GetBook retrieves a book by ID.
// Returns store.ErrNotFound if the book does not exist.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM libri WHERE id = ?`, id)

	b, err := scanBook(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ListBooks returns every book in the catalog, most recently created first.
func (s *Store) ListBooks(ctx context.Context) ([]*domain.Book, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+bookColumns+` FROM libri ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectBooks(rows)
}

// ListBooksByOwner returns the books owned by ownerID, most recently created first.
func (s *Store) ListBooksByOwner(ctx context.Context, ownerID string) ([]*domain.Book, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+bookColumns+` FROM libri WHERE utente_id = ? ORDER BY created_at DESC, id DESC`,
		ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectBooks(rows)
}

func collectBooks(rows *sql.Rows) ([]*domain.Book, error) {
	var books []*domain.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return books, nil
}

// UpdateBook replaces the mutable fields of a book, but only when ownerID
// owns it. The ownership check lives in the WHERE clause so the statement
// is a single atomic step: zero rows affected means absent or not owned,
// and the two cases are deliberately indistinguishable to the caller.
func (s *Store) UpdateBook(ctx context.Context, id string, upd domain.BookUpdate, ownerID string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE libri SET titolo = ?, autore = ?, stato = ?, updated_at = ?
		WHERE id = ? AND utente_id = ?`,
		upd.Titolo,
		upd.Autore,
		string(upd.Stato),
		formatTime(time.Now()),
		id,
		ownerID,
	)
	if err != nil {
		return false, err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteBookCascade removes a book and its quotes and reviews in one
// transaction. The ownership check is re-done inside the transaction so a
// concurrent writer can't slip between check and act. Returns (false, nil)
// when the book is absent or not owned by ownerID; any statement error
// rolls the whole transaction back.
func (s *Store) DeleteBookCascade(ctx context.Context, id string, ownerID string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	// No-op after a successful Commit.
	defer tx.Rollback()

	var found string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM libri WHERE id = ? AND utente_id = ?`, id, ownerID).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	// Children before parent, per foreign keys.
	if _, err := tx.ExecContext(ctx, `DELETE FROM citazioni WHERE libro_id = ?`, id); err != nil {
		return false, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM recensioni WHERE libro_id = ?`, id); err != nil {
		return false, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM libri WHERE id = ?`, id); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

// GetBookStatsByOwner returns per-status row counts for ownerID's books.
// Raw stored status values come back as-is; normalization into buckets
// happens in the domain layer.
func (s *Store) GetBookStatsByOwner(ctx context.Context, ownerID string) ([]domain.StatusCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT stato, COUNT(*) FROM libri
		WHERE utente_id = ?
		GROUP BY stato`,
		ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []domain.StatusCount
	for rows.Next() {
		var c domain.StatusCount
		if err := rows.Scan(&c.Stato, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}
