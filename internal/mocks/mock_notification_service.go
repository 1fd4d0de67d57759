package mocks

import (
	"context"

	"github.com/you/rakshasetu/domain"
)

// MockNotificationService implements domain.NotificationService interface for testing
type MockNotificationService struct {
	SendFunc func(ctx context.Context, to string, msg domain.Message) error
}

// NewMockNotificationService creates a new MockNotificationService with default behaviors
func NewMockNotificationService() *MockNotificationService {
	return &MockNotificationService{}
}

// Send delivers a message
func (m *MockNotificationService) Send(ctx context.Context, to string, msg domain.Message) error {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, to, msg)
	}
	// Default behavior: success (nothing is actually delivered in tests)
	return nil
}

// Compile-time interface compliance verification
var _ domain.NotificationService = (*MockNotificationService)(nil)
