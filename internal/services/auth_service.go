package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/you/rakshasetu/domain"
)

// AuthServiceImpl implements domain.AuthService
type AuthServiceImpl struct {
	userRepo    domain.UserRepository
	passwordSvc domain.PasswordService
	tokenSvc    domain.TokenService
	auditLogger domain.AuditLogger

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo domain.UserRepository,
	passwordSvc domain.PasswordService,
	tokenSvc domain.TokenService,
	auditLogger domain.AuditLogger,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		userRepo:    userRepo,
		passwordSvc: passwordSvc,
		tokenSvc:    tokenSvc,
		auditLogger: auditLogger,
	}
}

// Register implements domain.AuthService
func (s *AuthServiceImpl) Register(ctx context.Context, input domain.SignupInput) (*domain.AuthResult, error) {
	input.Normalize()
	if err := input.Validate(); err != nil {
		return nil, err
	}

	// Check if user already exists
	existingUser, err := s.userRepo.FindByEmail(ctx, input.Email)
	if err == nil && existingUser != nil {
		return nil, domain.ErrUserAlreadyExists
	}
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	hashedPassword, err := s.passwordSvc.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		Email:        input.Email,
		Name:         input.Name,
		Contact:      input.Contact,
		PasswordHash: hashedPassword,
		Profile:      input.Profile,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return nil, domain.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	result, err := issueSession(s.tokenSvc, user)
	if err != nil {
		return nil, err
	}

	recordEvent(ctx, s.auditLogger, domain.NewAuditEvent(domain.UserRegistrationEvent, user.Email).
		WithMetadata("user_id", user.ID))
	return result, nil
}

// Login implements domain.AuthService. Unknown identity and wrong password are
// indistinguishable to the caller.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrValidationFailed)
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to look up user: %w", err)
		}
		// burn a comparison so timing matches a known identity
		s.passwordSvc.Verify(s.dummyPasswordHash(), password)
		s.recordLoginFailure(ctx, email, domain.ErrInvalidCredentials)
		return nil, domain.ErrInvalidCredentials
	}

	if !s.passwordSvc.Verify(user.PasswordHash, password) {
		s.recordLoginFailure(ctx, email, domain.ErrInvalidCredentials)
		return nil, domain.ErrInvalidCredentials
	}

	result, err := issueSession(s.tokenSvc, user)
	if err != nil {
		return nil, err
	}

	recordEvent(ctx, s.auditLogger, domain.NewAuditEvent(domain.UserLoginEvent, user.Email).
		WithMetadata("method", "password"))
	return result, nil
}

// GetUserProfile implements domain.AuthService
func (s *AuthServiceImpl) GetUserProfile(ctx context.Context, email string) (*domain.User, error) {
	return s.userRepo.FindByEmail(ctx, email)
}

func (s *AuthServiceImpl) recordLoginFailure(ctx context.Context, email string, err error) {
	recordEvent(ctx, s.auditLogger, domain.NewAuditEvent(domain.UserLoginFailureEvent, email).
		WithError(err).
		WithMetadata("method", "password"))
}

// dummyPasswordHash lazily hashes a throwaway secret with the configured cost
func (s *AuthServiceImpl) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.passwordSvc.Hash("rakshasetu-timing-equaliser")
		if err == nil {
			s.dummyHash = hash
		}
	})
	return s.dummyHash
}

var _ domain.AuthService = (*AuthServiceImpl)(nil)
