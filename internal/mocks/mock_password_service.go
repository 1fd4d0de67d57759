package mocks

import (
	"strings"
	"sync"

	"github.com/you/rakshasetu/domain"
)

const mockHashPrefix = "hashed_"

// MockPasswordService is a reversible stand-in for bcrypt. It records every
// Verify call so tests can assert a comparison happened.
type MockPasswordService struct {
	HashFunc   func(password string) (string, error)
	VerifyFunc func(hashedPassword, password string) bool

	mu       sync.Mutex
	verified []string
}

func NewMockPasswordService() *MockPasswordService {
	return &MockPasswordService{}
}

func (m *MockPasswordService) Hash(password string) (string, error) {
	if m.HashFunc != nil {
		return m.HashFunc(password)
	}
	return mockHashPrefix + password, nil
}

func (m *MockPasswordService) Verify(hashedPassword, password string) bool {
	m.mu.Lock()
	m.verified = append(m.verified, hashedPassword)
	m.mu.Unlock()

	if m.VerifyFunc != nil {
		return m.VerifyFunc(hashedPassword, password)
	}
	return strings.HasPrefix(hashedPassword, mockHashPrefix) &&
		strings.TrimPrefix(hashedPassword, mockHashPrefix) == password
}

// VerifiedHashes returns the hashes passed to Verify, in call order.
func (m *MockPasswordService) VerifiedHashes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.verified...)
}

var _ domain.PasswordService = (*MockPasswordService)(nil)
