package services

import (
	"sync"
	"testing"
	"time"

	"github.com/you/rakshasetu/domain"
	"github.com/you/rakshasetu/internal/infrastructure/repositories"
	"github.com/you/rakshasetu/internal/mocks"
)

// fakeClock is a settable time source shared by the service and store
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// fixedCode returns a generator that always yields code
func fixedCode(code string) CodeGenerator {
	return func(int) (string, error) { return code, nil }
}

type otpFixture struct {
	svc      *OTPServiceImpl
	notifier *mocks.MockNotificationService
	userRepo *mocks.MockUserRepository
	store    *repositories.MemoryChallengeStore
	tokenSvc *mocks.MockTokenService
	audit    *mocks.MockAuditLogger
	clock    *fakeClock
}

// createOTPServiceForTest wires an OTPService over an in-memory store with a
// known user "user@example.com"
func createOTPServiceForTest(t *testing.T, opts ...OTPOption) *otpFixture {
	t.Helper()

	f := &otpFixture{
		notifier: mocks.NewMockNotificationService(),
		userRepo: mocks.NewMockUserRepository(createValidUser(t)),
		tokenSvc: mocks.NewMockTokenService(),
		audit:    mocks.NewMockAuditLogger(),
		clock:    newFakeClock(),
	}
	f.store = repositories.NewMemoryChallengeStore(10 * time.Minute).WithClock(f.clock.Now)

	allOpts := append([]OTPOption{WithOTPClock(f.clock.Now)}, opts...)
	f.svc = NewOTPService(f.notifier, f.userRepo, f.store, f.tokenSvc, f.audit, createTestOTPConfig(t), allOpts...)
	t.Cleanup(f.svc.Close)
	return f
}

func createTestOTPConfig(t *testing.T) OTPConfig {
	t.Helper()

	return OTPConfig{
		Length:          6,
		TTL:             5 * time.Minute,
		DispatchTimeout: time.Second,
	}
}

// createValidUser creates a valid user entity for testing
func createValidUser(t *testing.T) *domain.User {
	t.Helper()

	return &domain.User{
		ID:           1,
		Email:        "user@example.com",
		Name:         "Asha Rao",
		Contact:      "user@example.com",
		PasswordHash: "hashed_password123",
		Profile:      map[string]string{"phone": "+919800000000"},
		CreatedAt:    time.Now().Add(-24 * time.Hour),
		UpdatedAt:    time.Now().Add(-1 * time.Hour),
	}
}

// assertAuthResult checks the shape of a successful authentication
func assertAuthResult(t *testing.T, result *domain.AuthResult, expectedEmail string) {
	t.Helper()

	if result == nil {
		t.Fatal("auth result is nil")
	}
	if result.Identity != expectedEmail {
		t.Errorf("expected identity %s, got %s", expectedEmail, result.Identity)
	}
	if result.AccessToken == "" {
		t.Error("expected access token to be set")
	}
	if result.TokenType != "Bearer" {
		t.Errorf("expected token type Bearer, got %s", result.TokenType)
	}
	if result.ExpiresIn <= 0 {
		t.Errorf("expected positive expires_in, got %d", result.ExpiresIn)
	}
	if result.User == nil || result.User.Email != expectedEmail {
		t.Errorf("expected user %s in result", expectedEmail)
	}
}
