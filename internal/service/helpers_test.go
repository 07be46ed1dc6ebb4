package service

import (
	"context"
	"encoding/hex"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/biblio-app/biblio-server/internal/auth"
	"github.com/biblio-app/biblio-server/internal/ratelimit"
	"github.com/biblio-app/biblio-server/internal/store"
	"github.com/biblio-app/biblio-server/internal/store/sqlite"
	"github.com/biblio-app/biblio-server/internal/validation"
)

type testEnv struct {
	auth  *AuthService
	books *BookService
	store store.Store
}

// newTestEnv wires the services against a throwaway on-disk database.
// The login limiter is left nil; throttling gets its own test.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	tokens, err := auth.NewTokenService(hex.EncodeToString(key), time.Hour)
	require.NoError(t, err)

	v := validation.New()

	return &testEnv{
		auth:  NewAuthService(st, tokens, v, nil, logger),
		books: NewBookService(st, v, logger),
		store: st,
	}
}

// newThrottledEnv is newTestEnv with a login limiter that never refills,
// so the burst is all a client ever gets.
func newThrottledEnv(t *testing.T, burst int) *testEnv {
	t.Helper()

	env := newTestEnv(t)
	limiter := ratelimit.New(0, burst)
	t.Cleanup(limiter.Stop)

	env.auth = NewAuthService(env.store, env.auth.tokenService, env.auth.validator, limiter, env.auth.logger)
	return env
}

// registerUser registers a user and returns its ID.
func registerUser(t *testing.T, env *testEnv, nome, email string) string {
	t.Helper()

	resp, err := env.auth.Register(context.Background(), RegisterRequest{
		Nome:     nome,
		Email:    email,
		Password: "password123",
	})
	require.NoError(t, err)
	return resp.User.ID
}
