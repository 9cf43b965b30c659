package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"inkwell/internal/apperr"
	"inkwell/internal/models"
	"inkwell/internal/store"
)

// ErrInvalidCredentials is the single answer for an unknown email and a
// wrong password.
var ErrInvalidCredentials = apperr.Auth("Invalid credentials")

// MaxPasswordBytes is the longest password bcrypt accepts, counted in bytes.
const MaxPasswordBytes = 72

// PasswordTooLongMessage describes a password over MaxPasswordBytes.
const PasswordTooLongMessage = "Password must be at most 72 bytes"

// Service registers accounts and exchanges credentials for tokens.
type Service struct {
	users  store.UserStore
	tokens *TokenIssuer
	cost   int

	dummyOnce sync.Once
	dummyHash []byte
}

// NewService creates the auth service. cost is the bcrypt work factor; zero
// selects bcrypt.DefaultCost.
func NewService(users store.UserStore, tokens *TokenIssuer, cost int) *Service {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Service{users: users, tokens: tokens, cost: cost}
}

// Tokens returns the issuer, which also verifies tokens.
func (s *Service) Tokens() *TokenIssuer {
	return s.tokens
}

// NormalizeEmail trims and lowercases an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an author account and returns a token for it. Input is
// expected to have passed request validation.
func (s *Service) Register(ctx context.Context, name, email, password string) (string, *models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", nil, apperr.Validation("Validation failed", apperr.FieldError{
			Field:   "password",
			Message: PasswordTooLongMessage,
		})
	}
	if err != nil {
		return "", nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:         strings.TrimSpace(name),
		Email:        NormalizeEmail(email),
		PasswordHash: string(hash),
		Role:         models.RoleAuthor,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return "", nil, apperr.Conflict("User already exists", 0)
		}
		return "", nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Login checks credentials. An unknown email still pays for one bcrypt
// comparison so both failures look the same.
func (s *Service) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.users.GetUserByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// CurrentUser loads the account a verified token was issued for.
func (s *Service) CurrentUser(ctx context.Context, claims *Claims) (*models.User, error) {
	user, err := s.users.GetUser(ctx, claims.UserID())
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Auth("Not authorized, user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (s *Service) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("inkwell-timing-equalizer"), s.cost)
	})
	return s.dummyHash
}
