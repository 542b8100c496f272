package auth

import (
	"context"
	"errors"
	"fmt"
	"log"

	"online-chat/internal/user"
)

// ErrInvalidCredentials is returned on login with a wrong password or
// an unknown username. The two cases are indistinguishable on purpose.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Service handles registration and login against the user store
type Service struct {
	repo     user.Repository
	hasher   *PasswordHasher
	sessions *SessionManager
}

// NewService creates a new auth service
func NewService(repo user.Repository, hasher *PasswordHasher, sessions *SessionManager) *Service {
	return &Service{
		repo:     repo,
		hasher:   hasher,
		sessions: sessions,
	}
}

// Register creates a new user with a hashed password.
// Returns user.ErrDuplicateUsername when the name is taken.
func (s *Service) Register(ctx context.Context, username, password string) (*user.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %v", err)
	}

	u, err := s.repo.Create(ctx, username, hash)
	if err != nil {
		return nil, err
	}

	log.Printf("👤 User registered: %s", username)
	return u, nil
}

// Login verifies credentials and issues a session token
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	u, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("find user: %v", err)
	}

	if !s.hasher.Verify(password, u.PasswordHash) {
		return "", ErrInvalidCredentials
	}

	token, err := s.sessions.Issue(username)
	if err != nil {
		return "", fmt.Errorf("issue session: %v", err)
	}

	log.Printf("🔐 User logged in: %s", username)
	return token, nil
}

// CurrentUsername resolves a session token to its username
func (s *Service) CurrentUsername(token string) (string, error) {
	return s.sessions.Verify(token)
}
