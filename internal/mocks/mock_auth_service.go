package mocks

import (
	"context"
	"time"

	"github.com/you/rakshasetu/domain"
)

// MockAuthService implements domain.AuthService interface for testing
type MockAuthService struct {
	RegisterFunc       func(ctx context.Context, in domain.SignupInput) (*domain.AuthResult, error)
	LoginFunc          func(ctx context.Context, email, password string) (*domain.AuthResult, error)
	GetUserProfileFunc func(ctx context.Context, email string) (*domain.User, error)
}

// NewMockAuthService creates a new MockAuthService with default behaviors
func NewMockAuthService() *MockAuthService {
	return &MockAuthService{}
}

// Register registers a new user
func (m *MockAuthService) Register(ctx context.Context, in domain.SignupInput) (*domain.AuthResult, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, in)
	}
	// Default behavior: return a mock result
	return mockAuthResult(&domain.User{
		ID:           1,
		Email:        in.Email,
		Name:         in.Name,
		Contact:      in.Contact,
		PasswordHash: "hashed_" + in.Password,
		Profile:      in.Profile,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}), nil
}

// Login authenticates a user and returns auth result
func (m *MockAuthService) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	// Default behavior: return successful auth result
	return mockAuthResult(&domain.User{ID: 1, Email: email, Name: "Mock User"}), nil
}

// GetUserProfile gets user profile by identity
func (m *MockAuthService) GetUserProfile(ctx context.Context, email string) (*domain.User, error) {
	if m.GetUserProfileFunc != nil {
		return m.GetUserProfileFunc(ctx, email)
	}
	// Default behavior: return mock user
	return &domain.User{
		ID:        1,
		Email:     email,
		Name:      "Mock User",
		Contact:   email,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}, nil
}

func mockAuthResult(user *domain.User) *domain.AuthResult {
	expiresAt := time.Now().Add(24 * time.Hour)
	return &domain.AuthResult{
		User:        user,
		Identity:    user.Email,
		AccessToken: "mock_session_token",
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		ExpiresIn:   int64(24 * time.Hour / time.Second),
	}
}

// Compile-time interface compliance verification
var _ domain.AuthService = (*MockAuthService)(nil)
