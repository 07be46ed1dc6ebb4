package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/biblio-app/biblio-server/internal/domain"
	"github.com/biblio-app/biblio-server/internal/store"
)

func testUser(id, email string) *domain.User {
	return &domain.User{
		ID:           id,
		Nome:         "Test User",
		Email:        email,
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA",
		CreatedAt:    time.Now(),
	}
}

func TestCreateUser_GetUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := testUser("user-1", "maria@example.com")
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("create user: %v", err)
	}

	got, err := s.GetUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.Nome != "Test User" {
		t.Errorf("nome = %q, want %q", got.Nome, "Test User")
	}
	if got.Email != "maria@example.com" {
		t.Errorf("email = %q, want %q", got.Email, "maria@example.com")
	}
	if got.PasswordHash != u.PasswordHash {
		t.Errorf("password hash not round-tripped")
	}
	if got.CreatedAt.IsZero() {
		t.Errorf("created_at is zero")
	}
}

func TestGetUser_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetUser(context.Background(), "user-missing")
	if err != store.ErrNotFound {
		t.Errorf("err = %v, want store.ErrNotFound", err)
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateUser(ctx, testUser("user-1", "maria@example.com")); err != nil {
		t.Fatalf("create user: %v", err)
	}

	err := s.CreateUser(ctx, testUser("user-2", "maria@example.com"))
	if err != store.ErrAlreadyExists {
		t.Errorf("err = %v, want store.ErrAlreadyExists", err)
	}

	// Same email with different case is still a duplicate.
	err = s.CreateUser(ctx, testUser("user-3", "MARIA@Example.com"))
	if err != store.ErrAlreadyExists {
		t.Errorf("case-variant email: err = %v, want store.ErrAlreadyExists", err)
	}
}

func TestGetUserByEmail_CaseInsensitive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateUser(ctx, testUser("user-1", "Maria@Example.com")); err != nil {
		t.Fatalf("create user: %v", err)
	}

	got, err := s.GetUserByEmail(ctx, "maria@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got.ID != "user-1" {
		t.Errorf("id = %q, want user-1", got.ID)
	}
	// Original casing is preserved.
	if got.Email != "Maria@Example.com" {
		t.Errorf("email = %q, want original casing", got.Email)
	}

	got, err = s.GetUserByEmail(ctx, "  MARIA@EXAMPLE.COM  ")
	if err != nil {
		t.Fatalf("get by email with whitespace: %v", err)
	}
	if got.ID != "user-1" {
		t.Errorf("id = %q, want user-1", got.ID)
	}
}

func TestGetUserByEmail_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetUserByEmail(context.Background(), "nobody@example.com")
	if err != store.ErrNotFound {
		t.Errorf("err = %v, want store.ErrNotFound", err)
	}
}
