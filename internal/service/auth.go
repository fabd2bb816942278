package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Rrens/chatbot-api/internal/domain"
	"github.com/Rrens/chatbot-api/internal/security"
)

// Session is the result of a successful signup or login
type Session struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// AuthService handles account operations
type AuthService struct {
	users  domain.UserRepository
	tokens *security.TokenManager
	now    func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(users domain.UserRepository, tokens *security.TokenManager) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		now:    time.Now,
	}
}

// Signup creates a new account and opens a session for it
func (s *AuthService) Signup(ctx context.Context, input domain.UserSignup) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("user already registered: %w", domain.ErrDuplicate)
	}

	hash, err := security.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Name:     strings.TrimSpace(input.Name),
		Email:    email,
		Password: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.openSession(user)
}

// Login verifies credentials and opens a session
func (s *AuthService) Login(ctx context.Context, input domain.UserLogin) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user not registered: %w", domain.ErrUnauthorized)
	}

	if !security.CheckPassword(user.Password, input.Password) {
		return nil, fmt.Errorf("incorrect password: %w", domain.ErrUnauthorized)
	}

	return s.openSession(user)
}

// Status resolves the user behind a verified session
func (s *AuthService) Status(ctx context.Context, userID string) (*domain.User, error) {
	return loadUser(ctx, s.users, userID)
}

func (s *AuthService) openSession(user *domain.User) (*Session, error) {
	token, err := s.tokens.CreateDefaultToken(user.ID.Hex(), user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to create token: %w", err)
	}

	return &Session{
		User:      user,
		Token:     token,
		ExpiresAt: s.now().Add(s.tokens.TTL()),
	}, nil
}

// loadUser maps a claim subject to a stored user. Malformed ids and
// deleted users are both reported as ErrUnauthorized.
func loadUser(ctx context.Context, users domain.UserRepository, userID string) (*domain.User, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, fmt.Errorf("malformed user id: %w", domain.ErrUnauthorized)
	}

	user, err := users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, errStaleCredential
	}
	return user, nil
}

var errStaleCredential = fmt.Errorf("user not registered or token malfunctioned: %w", domain.ErrUnauthorized)
