package mocks

import (
	"context"
	"time"

	"github.com/you/rakshasetu/domain"
)

// MockOTPService implements domain.OTPService interface for testing
type MockOTPService struct {
	IssueFunc  func(ctx context.Context, email string) (*domain.Challenge, error)
	VerifyFunc func(ctx context.Context, email, code string) (*domain.AuthResult, error)
}

// NewMockOTPService creates a new MockOTPService with default behaviors
func NewMockOTPService() *MockOTPService {
	return &MockOTPService{}
}

// Issue issues a challenge
func (m *MockOTPService) Issue(ctx context.Context, email string) (*domain.Challenge, error) {
	if m.IssueFunc != nil {
		return m.IssueFunc(ctx, email)
	}
	// Default behavior: a live five minute challenge
	now := time.Now()
	return &domain.Challenge{
		Identity:  email,
		IssuedAt:  now,
		ExpiresAt: now.Add(5 * time.Minute),
	}, nil
}

// Verify verifies a challenge
func (m *MockOTPService) Verify(ctx context.Context, email, code string) (*domain.AuthResult, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, email, code)
	}
	// Default behavior: nothing outstanding
	return nil, domain.ErrChallengeNotFound
}

// Compile-time interface compliance verification
var _ domain.OTPService = (*MockOTPService)(nil)
