package mocks

import (
	"context"
	"sync"

	"github.com/you/rakshasetu/domain"
)

// MockUserRepository keeps users in a map unless a Func override is set.
// Create assigns sequential IDs and rejects a repeated email.
type MockUserRepository struct {
	CreateFunc      func(ctx context.Context, user *domain.User) error
	FindByEmailFunc func(ctx context.Context, email string) (*domain.User, error)

	mu     sync.Mutex
	users  map[string]domain.User
	nextID uint
}

func NewMockUserRepository(seed ...*domain.User) *MockUserRepository {
	m := &MockUserRepository{users: make(map[string]domain.User)}
	for _, u := range seed {
		_ = m.store(u)
	}
	return m
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return m.store(user)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (m *MockUserRepository) store(user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.users == nil {
		m.users = make(map[string]domain.User)
	}
	if _, exists := m.users[user.Email]; exists {
		return domain.ErrUserAlreadyExists
	}
	m.nextID++
	if user.ID == 0 {
		user.ID = m.nextID
	}
	m.users[user.Email] = *user
	return nil
}

var _ domain.UserRepository = (*MockUserRepository)(nil)
