// Package service implements the application services between the API and the store.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/biblio-app/biblio-server/internal/auth"
	"github.com/biblio-app/biblio-server/internal/domain"
	domainerrors "github.com/biblio-app/biblio-server/internal/errors"
	"github.com/biblio-app/biblio-server/internal/id"
	"github.com/biblio-app/biblio-server/internal/ratelimit"
	"github.com/biblio-app/biblio-server/internal/store"
	"github.com/biblio-app/biblio-server/internal/validation"
)

// AuthService handles registration, login, and token verification.
type AuthService struct {
	store        store.Store
	tokenService *auth.TokenService
	validator    *validation.Validator
	loginLimiter *ratelimit.KeyedRateLimiter
	logger       *slog.Logger
}

// NewAuthService creates a new authentication service.
// loginLimiter may be nil to disable login throttling (tests).
func NewAuthService(
	st store.Store,
	tokenService *auth.TokenService,
	validator *validation.Validator,
	loginLimiter *ratelimit.KeyedRateLimiter,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		store:        st,
		tokenService: tokenService,
		validator:    validator,
		loginLimiter: loginLimiter,
		logger:       logger,
	}
}

// RegisterRequest contains user registration data.
type RegisterRequest struct {
	Nome     string `json:"nome" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=1024"`
}

// LoginRequest contains user credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	// ClientKey identifies the caller for login throttling.
	// Extracted from the request by the handler, not from the body.
	ClientKey string `json:"-"`
}

// AuthResponse contains the access token and the public user projection.
type AuthResponse struct {
	Token string            `json:"token"`
	User  domain.PublicUser `json:"user"`
}

// Register creates a new user account and returns a fresh access token.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID, err := id.Generate("user")
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	user := &domain.User{
		ID:           userID,
		Nome:         strings.TrimSpace(req.Nome),
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: passwordHash,
	}
	user.CreatedAt = time.Now()

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Conflict("Email già registrata")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokenService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	s.logger.Info("User registered", "user_id", userID)

	return &AuthResponse{Token: token, User: user.Public()}, nil
}

// Login authenticates a user and returns a fresh access token.
// Attempts are throttled per client key before the password is verified, so
// a flood of guesses can't burn CPU on argon2.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if s.loginLimiter != nil && req.ClientKey != "" {
		if !s.loginLimiter.Allow(req.ClientKey) {
			return nil, domainerrors.RateLimited("too many login attempts, try again later")
		}
	}

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Don't leak whether the email exists.
			return nil, domainerrors.InvalidCredentials("Credenziali non valide")
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	valid, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return nil, domainerrors.InvalidCredentials("Credenziali non valide")
	}

	token, err := s.tokenService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	s.logger.Info("User logged in", "user_id", user.ID)

	return &AuthResponse{Token: token, User: user.Public()}, nil
}

// Me returns the public projection of the authenticated user.
func (s *AuthService) Me(ctx context.Context, userID string) (*domain.PublicUser, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("Utente non trovato")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	pub := user.Public()
	return &pub, nil
}

// VerifyAccessToken validates a token and returns the associated user.
// Used by the request authentication helper.
func (s *AuthService) VerifyAccessToken(ctx context.Context, tokenString string) (*domain.User, *auth.AccessClaims, error) {
	claims, err := s.tokenService.VerifyAccessToken(tokenString)
	if err != nil {
		return nil, nil, domainerrors.Unauthorized("invalid or expired token")
	}

	// The token is only as good as the account behind it.
	user, err := s.store.GetUser(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, domainerrors.Unauthorized("account no longer exists")
		}
		return nil, nil, fmt.Errorf("get user: %w", err)
	}

	return user, claims, nil
}
