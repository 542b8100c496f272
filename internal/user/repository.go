package user

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrDuplicateUsername is returned when the username is already registered
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrUserNotFound is returned when no user matches the username
	ErrUserNotFound = errors.New("user not found")
)

// Repository persists registered users
type Repository interface {
	Create(ctx context.Context, username, passwordHash string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context) ([]*User, error)
}

// InMemoryRepository implements Repository using in-memory storage
type InMemoryRepository struct {
	usersByName map[string]*User
	mutex       sync.RWMutex
}

// NewInMemoryRepository creates a new in-memory user repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		usersByName: make(map[string]*User),
	}
}

// Create creates a new user
func (r *InMemoryRepository) Create(_ context.Context, username, passwordHash string) (*User, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.usersByName[username]; exists {
		return nil, ErrDuplicateUsername
	}

	u := &User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	r.usersByName[username] = u

	return u, nil
}

// FindByUsername gets a user by username
func (r *InMemoryRepository) FindByUsername(_ context.Context, username string) (*User, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	u, exists := r.usersByName[username]
	if !exists {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// List returns all registered users
func (r *InMemoryRepository) List(_ context.Context) ([]*User, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	users := make([]*User, 0, len(r.usersByName))
	for _, u := range r.usersByName {
		users = append(users, u)
	}
	return users, nil
}
