package mocks

import (
	"time"

	"github.com/you/rakshasetu/domain"
)

// MockTokenService implements domain.TokenService interface for testing
type MockTokenService struct {
	IssueFunc    func(identity string) (*domain.SessionToken, error)
	ValidateFunc func(token string) (*domain.TokenClaims, error)
}

// NewMockTokenService creates a new MockTokenService with default behaviors
func NewMockTokenService() *MockTokenService {
	return &MockTokenService{}
}

// Issue mints a session token for identity
func (m *MockTokenService) Issue(identity string) (*domain.SessionToken, error) {
	if m.IssueFunc != nil {
		return m.IssueFunc(identity)
	}
	// Default behavior: predictable token derived from the identity
	now := time.Now()
	return &domain.SessionToken{
		Token:     "session_token_" + identity,
		ID:        "jti_" + identity,
		Identity:  identity,
		IssuedAt:  now,
		ExpiresAt: now.Add(24 * time.Hour),
	}, nil
}

// Validate validates a session token
func (m *MockTokenService) Validate(token string) (*domain.TokenClaims, error) {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(token)
	}
	// Default behavior: reject everything
	return nil, domain.ErrTokenInvalid
}

// Compile-time interface compliance verification
var _ domain.TokenService = (*MockTokenService)(nil)
