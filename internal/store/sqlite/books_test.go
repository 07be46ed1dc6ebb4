package sqlite

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/biblio-app/biblio-server/internal/domain"
	"github.com/biblio-app/biblio-server/internal/store"
)

func seedUser(t *testing.T, s *Store, id string) {
	t.Helper()
	if err := s.CreateUser(context.Background(), testUser(id, id+"@example.com")); err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
}

func seedBook(t *testing.T, s *Store, id, ownerID string) *domain.Book {
	t.Helper()
	b := &domain.Book{
		ID:       id,
		Titolo:   "Il Gattopardo",
		Autore:   "Tomasi di Lampedusa",
		Stato:    domain.StatusToRead,
		UtenteID: ownerID,
	}
	b.InitTimestamps()
	if err := s.CreateBook(context.Background(), b); err != nil {
		t.Fatalf("seed book %s: %v", id, err)
	}
	return b
}

func seedQuote(t *testing.T, s *Store, id, bookID string) {
	t.Helper()
	q := &domain.Quote{ID: id, Testo: "una citazione", LibroID: bookID, CreatedAt: time.Now()}
	if err := s.CreateQuote(context.Background(), q); err != nil {
		t.Fatalf("seed quote %s: %v", id, err)
	}
}

func seedReview(t *testing.T, s *Store, id, bookID string) {
	t.Helper()
	r := &domain.Review{ID: id, Testo: "una recensione", LibroID: bookID, CreatedAt: time.Now()}
	if err := s.CreateReview(context.Background(), r); err != nil {
		t.Fatalf("seed review %s: %v", id, err)
	}
}

func countRows(t *testing.T, s *Store, table, bookID string) int {
	t.Helper()
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM `+table+` WHERE libro_id = ?`, bookID).Scan(&n)
	if err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func TestCreateBook_GetBook(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "user-a")
	seedBook(t, s, "book-1", "user-a")

	got, err := s.GetBook(ctx, "book-1")
	if err != nil {
		t.Fatalf("get book: %v", err)
	}
	if got.Titolo != "Il Gattopardo" {
		t.Errorf("titolo = %q", got.Titolo)
	}
	if got.Stato != domain.StatusToRead {
		t.Errorf("stato = %q, want %q", got.Stato, domain.StatusToRead)
	}
	if got.UtenteID != "user-a" {
		t.Errorf("utente_id = %q, want user-a", got.UtenteID)
	}
}

func TestGetBook_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetBook(context.Background(), "book-missing")
	if err != store.ErrNotFound {
		t.Errorf("err = %v, want store.ErrNotFound", err)
	}
}

func TestListBooksByOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "user-a")
	seedUser(t, s, "user-b")
	seedBook(t, s, "book-1", "user-a")
	seedBook(t, s, "book-2", "user-a")
	seedBook(t, s, "book-3", "user-b")

	books, err := s.ListBooksByOwner(ctx, "user-a")
	if err != nil {
		t.Fatalf("list by owner: %v", err)
	}
	if len(books) != 2 {
		t.Fatalf("got %d books, want 2", len(books))
	}
	for _, b := range books {
		if b.UtenteID != "user-a" {
			t.Errorf("book %s owned by %s, want user-a", b.ID, b.UtenteID)
		}
	}

	all, err := s.ListBooks(ctx)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("got %d books, want 3", len(all))
	}
}

func TestUpdateBook_OwnerPredicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "user-a")
	seedUser(t, s, "user-b")
	seedBook(t, s, "book-1", "user-a")

	upd := domain.BookUpdate{Titolo: "Nuovo Titolo", Autore: "Nuovo Autore", Stato: domain.StatusRead}

	// Non-owner: no match, and the row is untouched.
	ok, err := s.UpdateBook(ctx, "book-1", upd, "user-b")
	if err != nil {
		t.Fatalf("update as non-owner: %v", err)
	}
	if ok {
		t.Errorf("non-owner update matched a row")
	}
	got, _ := s.GetBook(ctx, "book-1")
	if got.Titolo != "Il Gattopardo" {
		t.Errorf("titolo changed by non-owner update: %q", got.Titolo)
	}

	// Missing book: same outcome as non-owner.
	ok, err = s.UpdateBook(ctx, "book-missing", upd, "user-a")
	if err != nil {
		t.Fatalf("update missing book: %v", err)
	}
	if ok {
		t.Errorf("update of missing book matched a row")
	}

	// Owner: applied.
	ok, err = s.UpdateBook(ctx, "book-1", upd, "user-a")
	if err != nil {
		t.Fatalf("update as owner: %v", err)
	}
	if !ok {
		t.Fatalf("owner update did not match")
	}
	got, err = s.GetBook(ctx, "book-1")
	if err != nil {
		t.Fatalf("get book: %v", err)
	}
	if got.Titolo != "Nuovo Titolo" || got.Autore != "Nuovo Autore" || got.Stato != domain.StatusRead {
		t.Errorf("update not applied: %+v", got)
	}
	if got.UtenteID != "user-a" {
		t.Errorf("owner changed on update: %q", got.UtenteID)
	}
}

func TestDeleteBookCascade(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "user-a")
	seedBook(t, s, "book-1", "user-a")
	seedQuote(t, s, "quote-1", "book-1")
	seedQuote(t, s, "quote-2", "book-1")
	seedReview(t, s, "rev-1", "book-1")

	ok, err := s.DeleteBookCascade(ctx, "book-1", "user-a")
	if err != nil {
		t.Fatalf("cascade delete: %v", err)
	}
	if !ok {
		t.Fatalf("cascade delete did not match")
	}

	if _, err := s.GetBook(ctx, "book-1"); err != store.ErrNotFound {
		t.Errorf("book still present after cascade: %v", err)
	}
	if n := countRows(t, s, "citazioni", "book-1"); n != 0 {
		t.Errorf("%d orphaned quotes", n)
	}
	if n := countRows(t, s, "recensioni", "book-1"); n != 0 {
		t.Errorf("%d orphaned reviews", n)
	}
}

func TestDeleteBookCascade_NonOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "user-a")
	seedUser(t, s, "user-b")
	seedBook(t, s, "book-1", "user-a")
	seedQuote(t, s, "quote-1", "book-1")

	ok, err := s.DeleteBookCascade(ctx, "book-1", "user-b")
	if err != nil {
		t.Fatalf("cascade delete as non-owner: %v", err)
	}
	if ok {
		t.Fatalf("non-owner delete matched")
	}

	// Book and children are untouched.
	if _, err := s.GetBook(ctx, "book-1"); err != nil {
		t.Errorf("book missing after refused delete: %v", err)
	}
	if n := countRows(t, s, "citazioni", "book-1"); n != 1 {
		t.Errorf("quote count = %d, want 1", n)
	}
}

func TestDeleteBookCascade_MissingBook(t *testing.T) {
	s := newTestStore(t)

	seedUser(t, s, "user-a")

	ok, err := s.DeleteBookCascade(context.Background(), "book-missing", "user-a")
	if err != nil {
		t.Fatalf("cascade delete missing: %v", err)
	}
	if ok {
		t.Errorf("delete of missing book matched")
	}
}

func TestDeleteBookCascade_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "user-a")
	seedBook(t, s, "book-1", "user-a")

	ok, err := s.DeleteBookCascade(ctx, "book-1", "user-a")
	if err != nil || !ok {
		t.Fatalf("first delete: ok=%v err=%v", ok, err)
	}

	// Second delete of the same book reports no match, not an error.
	ok, err = s.DeleteBookCascade(ctx, "book-1", "user-a")
	if err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if ok {
		t.Errorf("second delete matched")
	}
}

// TestDeleteBookCascade_RollbackOnFailure forces the parent delete to fail
// after the child deletes have run, and verifies nothing was removed.
func TestDeleteBookCascade_RollbackOnFailure(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "user-a")
	seedBook(t, s, "book-1", "user-a")
	seedQuote(t, s, "quote-1", "book-1")
	seedReview(t, s, "rev-1", "book-1")

	// Abort the transaction at the last statement.
	_, err := s.db.Exec(`
		CREATE TRIGGER fail_libri_delete BEFORE DELETE ON libri
		BEGIN
			SELECT RAISE(ABORT, 'injected failure');
		END`)
	if err != nil {
		t.Fatalf("create trigger: %v", err)
	}

	ok, err := s.DeleteBookCascade(ctx, "book-1", "user-a")
	if err == nil {
		t.Fatalf("expected error from injected failure, got ok=%v", ok)
	}

	// All three tables are intact: the child deletes were rolled back too.
	if _, err := s.GetBook(ctx, "book-1"); err != nil {
		t.Errorf("book missing after rollback: %v", err)
	}
	if n := countRows(t, s, "citazioni", "book-1"); n != 1 {
		t.Errorf("quote count = %d after rollback, want 1", n)
	}
	if n := countRows(t, s, "recensioni", "book-1"); n != 1 {
		t.Errorf("review count = %d after rollback, want 1", n)
	}

	// With the trigger removed the same call succeeds.
	if _, err := s.db.Exec(`DROP TRIGGER fail_libri_delete`); err != nil {
		t.Fatalf("drop trigger: %v", err)
	}
	ok, err = s.DeleteBookCascade(ctx, "book-1", "user-a")
	if err != nil || !ok {
		t.Fatalf("delete after trigger removal: ok=%v err=%v", ok, err)
	}
}

func TestGetBookStatsByOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "user-a")
	seedUser(t, s, "user-b")

	states := []domain.Status{domain.StatusToRead, domain.StatusToRead, domain.StatusReading, domain.StatusRead}
	for i, st := range states {
		b := &domain.Book{
			ID:       fmt.Sprintf("book-%d", i+1),
			Titolo:   "Titolo",
			Autore:   "Autore",
			Stato:    st,
			UtenteID: "user-a",
		}
		b.InitTimestamps()
		if err := s.CreateBook(ctx, b); err != nil {
			t.Fatalf("create book: %v", err)
		}
	}
	seedBook(t, s, "book-other", "user-b")

	counts, err := s.GetBookStatsByOwner(ctx, "user-a")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}

	stats := domain.BuildBookStats(counts)
	if stats.Total != 4 {
		t.Errorf("total = %d, want 4", stats.Total)
	}
	if stats.ToRead != 2 || stats.Reading != 1 || stats.Read != 1 {
		t.Errorf("buckets = %+v", stats)
	}
}
