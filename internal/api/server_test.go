package api

import (
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biblio-app/biblio-server/internal/auth"
	"github.com/biblio-app/biblio-server/internal/service"
	"github.com/biblio-app/biblio-server/internal/store/sqlite"
	"github.com/biblio-app/biblio-server/internal/validation"
)

// testServer wraps the API server for end-to-end tests.
type testServer struct {
	*Server
	api humatest.TestAPI
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	st, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	tokenService, err := auth.NewTokenService(hex.EncodeToString(key), time.Hour)
	require.NoError(t, err)

	v := validation.New()

	services := &Services{
		Auth: service.NewAuthService(st, tokenService, v, nil, logger),
		Book: service.NewBookService(st, v, logger),
	}

	s := NewServer(st, services, logger)

	return &testServer{
		Server: s,
		api:    humatest.Wrap(t, s.api),
	}
}

// registerUser registers a user and returns the access token and user ID.
func (ts *testServer) registerUser(t *testing.T, nome, email string) (token, userID string) {
	t.Helper()

	resp := ts.api.Post("/api/auth/register", map[string]any{
		"nome":     nome,
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, resp.Code, "register failed: %s", resp.Body.String())

	var body AuthResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)

	return body.Token, body.User.ID
}

// createBook creates a book through the API and returns it.
func (ts *testServer) createBook(t *testing.T, token, titolo, autore string) BookResponse {
	t.Helper()

	resp := ts.api.Post("/api/books",
		map[string]any{"titolo": titolo, "autore": autore},
		"Authorization: Bearer "+token)
	require.Equal(t, http.StatusCreated, resp.Code, "create book failed: %s", resp.Body.String())

	var book BookResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &book))
	return book
}

// === Tests ===

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")
	assert.Equal(t, http.StatusOK, resp.Code)

	var body HealthResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "healthy", body.Components["database"].Status)
}

func TestRegisterLoginMe(t *testing.T) {
	ts := setupTestServer(t)

	token, userID := ts.registerUser(t, "Maria Rossi", "maria@example.com")

	// Login with the same credentials.
	resp := ts.api.Post("/api/auth/login", map[string]any{
		"email":    "maria@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var login AuthResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &login))
	assert.Equal(t, userID, login.User.ID)

	// Me with the registration token.
	resp = ts.api.Get("/api/auth/me", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	var me UserResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &me))
	assert.Equal(t, "Maria Rossi", me.Nome)
	assert.Equal(t, "maria@example.com", me.Email)
}

func TestMe_Unauthenticated(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/auth/me")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Get("/api/auth/me", "Authorization: Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ts := setupTestServer(t)

	ts.registerUser(t, "Maria", "maria@example.com")

	resp := ts.api.Post("/api/auth/register", map[string]any{
		"nome":     "Another Maria",
		"email":    "maria@example.com",
		"password": "diverso456",
	})
	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Contains(t, resp.Body.String(), "Email già registrata")
}

func TestRegister_InvalidEmail(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/auth/register", map[string]any{
		"nome":     "Maria",
		"email":    "not-an-email",
		"password": "password123",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestLogin_WrongPassword(t *testing.T) {
	ts := setupTestServer(t)

	ts.registerUser(t, "Maria", "maria@example.com")

	resp := ts.api.Post("/api/auth/login", map[string]any{
		"email":    "maria@example.com",
		"password": "sbagliata1",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Contains(t, resp.Body.String(), "Credenziali non valide")
}

func TestBookLifecycle(t *testing.T) {
	ts := setupTestServer(t)

	token, userID := ts.registerUser(t, "Maria", "maria@example.com")

	book := ts.createBook(t, token, "Il nome della rosa", "Umberto Eco")
	assert.Equal(t, "da leggere", book.Stato, "default reading state")
	assert.Equal(t, userID, book.UtenteID)

	// The catalog is publicly readable.
	resp := ts.api.Get("/api/books")
	require.Equal(t, http.StatusOK, resp.Code)

	var list BookListResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Total)

	resp = ts.api.Get("/api/books/" + book.ID)
	require.Equal(t, http.StatusOK, resp.Code)

	// Update moves the reading state.
	resp = ts.api.Put("/api/books/"+book.ID,
		map[string]any{"titolo": "Il nome della rosa", "autore": "Umberto Eco", "stato": "letto"},
		"Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	var updated BookResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &updated))
	assert.Equal(t, "letto", updated.Stato)

	// Delete, then the book is gone.
	resp = ts.api.Delete("/api/books/"+book.ID, "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/books/" + book.ID)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestCreateBook_Unauthenticated(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/books", map[string]any{
		"titolo": "Libro", "autore": "Autore",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestUpdateBook_NonOwner(t *testing.T) {
	ts := setupTestServer(t)

	mariaToken, _ := ts.registerUser(t, "Maria", "maria@example.com")
	lucaToken, _ := ts.registerUser(t, "Luca", "luca@example.com")

	book := ts.createBook(t, mariaToken, "Il Gattopardo", "Tomasi di Lampedusa")

	// A non-owner gets the same 404 as a missing book.
	resp := ts.api.Put("/api/books/"+book.ID,
		map[string]any{"titolo": "Hijacked", "autore": "Nobody", "stato": "letto"},
		"Authorization: Bearer "+lucaToken)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Contains(t, resp.Body.String(), "Libro non trovato o non autorizzato")

	resp = ts.api.Delete("/api/books/"+book.ID, "Authorization: Bearer "+lucaToken)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	// The book is untouched.
	resp = ts.api.Get("/api/books/" + book.ID)
	require.Equal(t, http.StatusOK, resp.Code)

	var got BookResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	assert.Equal(t, "Il Gattopardo", got.Titolo)
}

func TestListMine(t *testing.T) {
	ts := setupTestServer(t)

	mariaToken, mariaID := ts.registerUser(t, "Maria", "maria@example.com")
	lucaToken, _ := ts.registerUser(t, "Luca", "luca@example.com")

	ts.createBook(t, mariaToken, "Libro uno", "Autore")
	ts.createBook(t, mariaToken, "Libro due", "Autore")
	ts.createBook(t, lucaToken, "Libro tre", "Autore")

	resp := ts.api.Get("/api/books/me/mine", "Authorization: Bearer "+mariaToken)
	require.Equal(t, http.StatusOK, resp.Code)

	var list BookListResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))
	require.Equal(t, 2, list.Total)
	for _, b := range list.Books {
		assert.Equal(t, mariaID, b.UtenteID)
	}
}

func TestQuotesAndReviews(t *testing.T) {
	ts := setupTestServer(t)

	mariaToken, _ := ts.registerUser(t, "Maria", "maria@example.com")
	lucaToken, _ := ts.registerUser(t, "Luca", "luca@example.com")

	book := ts.createBook(t, mariaToken, "Le città invisibili", "Italo Calvino")

	// A non-owner can see the book but cannot annotate it.
	resp := ts.api.Post("/api/books/"+book.ID+"/citazioni",
		map[string]any{"testo": "Non mio."},
		"Authorization: Bearer "+lucaToken)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.api.Post("/api/books/"+book.ID+"/citazioni",
		map[string]any{"testo": "L'inferno dei viventi non è qualcosa che sarà."},
		"Authorization: Bearer "+mariaToken)
	require.Equal(t, http.StatusCreated, resp.Code)

	var quote QuoteResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &quote))
	assert.Equal(t, book.ID, quote.LibroID)

	resp = ts.api.Post("/api/books/"+book.ID+"/recensioni",
		map[string]any{"testo": "Un libro da rileggere."},
		"Authorization: Bearer "+mariaToken)
	require.Equal(t, http.StatusCreated, resp.Code)

	// Lists are public.
	resp = ts.api.Get("/api/books/" + book.ID + "/citazioni")
	require.Equal(t, http.StatusOK, resp.Code)

	var quotes QuoteListResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &quotes))
	require.Equal(t, 1, quotes.Total)
	assert.Equal(t, quote.ID, quotes.Quotes[0].ID)

	resp = ts.api.Get("/api/books/" + book.ID + "/recensioni")
	require.Equal(t, http.StatusOK, resp.Code)

	var reviews ReviewListResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &reviews))
	assert.Equal(t, 1, reviews.Total)

	// Only the owner deletes annotations.
	resp = ts.api.Delete("/api/books/"+book.ID+"/citazioni/"+quote.ID,
		"Authorization: Bearer "+lucaToken)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.api.Delete("/api/books/"+book.ID+"/citazioni/"+quote.ID,
		"Authorization: Bearer "+mariaToken)
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Delete("/api/books/"+book.ID+"/citazioni/"+quote.ID,
		"Authorization: Bearer "+mariaToken)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestDeleteBook_Cascades(t *testing.T) {
	ts := setupTestServer(t)

	token, _ := ts.registerUser(t, "Maria", "maria@example.com")
	book := ts.createBook(t, token, "Il barone rampante", "Italo Calvino")

	resp := ts.api.Post("/api/books/"+book.ID+"/citazioni",
		map[string]any{"testo": "Una citazione."},
		"Authorization: Bearer "+token)
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = ts.api.Post("/api/books/"+book.ID+"/recensioni",
		map[string]any{"testo": "Una recensione."},
		"Authorization: Bearer "+token)
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = ts.api.Delete("/api/books/"+book.ID, "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	// The book and everything attached to it are gone.
	resp = ts.api.Get("/api/books/" + book.ID)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.api.Get("/api/books/" + book.ID + "/citazioni")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.api.Get("/api/books/" + book.ID + "/recensioni")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestBookStats(t *testing.T) {
	ts := setupTestServer(t)

	token, _ := ts.registerUser(t, "Maria", "maria@example.com")

	for _, b := range []struct{ titolo, stato string }{
		{"Libro uno", "da leggere"},
		{"Libro due", "in lettura"},
		{"Libro tre", "letto"},
		{"Libro quattro", "letto"},
	} {
		resp := ts.api.Post("/api/books",
			map[string]any{"titolo": b.titolo, "autore": "Autore", "stato": b.stato},
			"Authorization: Bearer "+token)
		require.Equal(t, http.StatusCreated, resp.Code)
	}

	resp := ts.api.Get("/api/books/me/stats", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	var stats BookStatsResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &stats))
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 1, stats.ToRead)
	assert.Equal(t, 1, stats.Reading)
	assert.Equal(t, 2, stats.Read)
}
