package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/you/rakshasetu/domain"
)

const otpSubject = "Your OTP for RakshaSetu Login"

// OTPServiceImpl implements domain.OTPService on top of a ChallengeStore
type OTPServiceImpl struct {
	notificationSvc domain.NotificationService
	userRepo        domain.UserRepository
	store           domain.ChallengeStore
	tokenSvc        domain.TokenService
	auditLogger     domain.AuditLogger
	config          OTPConfig

	generate CodeGenerator
	now      func() time.Time
	inflight sync.WaitGroup
}

type OTPConfig struct {
	Length          int
	TTL             time.Duration
	DispatchTimeout time.Duration
}

// OTPOption customises an OTPServiceImpl
type OTPOption func(*OTPServiceImpl)

// WithCodeGenerator replaces the crypto/rand code generator
func WithCodeGenerator(gen CodeGenerator) OTPOption {
	return func(s *OTPServiceImpl) { s.generate = gen }
}

// WithOTPClock replaces the time source used for issuing and checking challenges
func WithOTPClock(now func() time.Time) OTPOption {
	return func(s *OTPServiceImpl) { s.now = now }
}

// NewOTPService creates a new OTP service
func NewOTPService(
	notificationSvc domain.NotificationService,
	userRepo domain.UserRepository,
	store domain.ChallengeStore,
	tokenSvc domain.TokenService,
	auditLogger domain.AuditLogger,
	config OTPConfig,
	opts ...OTPOption,
) *OTPServiceImpl {
	if config.Length <= 0 {
		config.Length = 6
	}
	if config.TTL <= 0 {
		config.TTL = 5 * time.Minute
	}
	if config.DispatchTimeout <= 0 {
		config.DispatchTimeout = 10 * time.Second
	}

	s := &OTPServiceImpl{
		notificationSvc: notificationSvc,
		userRepo:        userRepo,
		store:           store,
		tokenSvc:        tokenSvc,
		auditLogger:     auditLogger,
		config:          config,
		generate:        GenerateCode,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue implements domain.OTPService. Any outstanding challenge for the
// identity is superseded; delivery happens in the background.
func (s *OTPServiceImpl) Issue(ctx context.Context, email string) (*domain.Challenge, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrValidationFailed)
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnknownIdentity
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	code, err := s.generate(s.config.Length)
	if err != nil {
		return nil, fmt.Errorf("failed to generate OTP code: %w", err)
	}

	now := s.now()
	challenge := &domain.Challenge{
		Identity:  user.Email,
		CodeHash:  HashCode(code),
		IssuedAt:  now,
		ExpiresAt: now.Add(s.config.TTL),
	}
	if err := s.store.Put(ctx, challenge); err != nil {
		return nil, fmt.Errorf("failed to store OTP challenge: %w", err)
	}

	recordEvent(ctx, s.auditLogger, domain.NewAuditEvent(domain.OTPRequestEvent, user.Email).
		WithMetadata("expires_at", challenge.ExpiresAt.UTC().Format(time.RFC3339)))

	s.dispatch(ctx, user, code)

	return challenge, nil
}

// dispatch delivers the code off the request goroutine
func (s *OTPServiceImpl) dispatch(ctx context.Context, user *domain.User, code string) {
	to := user.Contact
	if to == "" {
		to = user.Email
	}
	msg := otpMessage(code, s.config.TTL)

	// detached from the request so delivery outlives the response
	dispatchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.DispatchTimeout)

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		defer cancel()

		if err := s.notificationSvc.Send(dispatchCtx, to, msg); err != nil {
			log.Printf("OTP_DISPATCH_FAILED: email=%s to=%s error=%v", user.Email, to, err)
			recordEvent(dispatchCtx, s.auditLogger, domain.NewAuditEvent(domain.OTPDispatchFailureEvent, user.Email).
				WithError(err).
				WithMetadata("to", to))
		}
	}()
}

// Verify implements domain.OTPService. The challenge is consumed by the
// attempt whatever the outcome.
func (s *OTPServiceImpl) Verify(ctx context.Context, email, code string) (*domain.AuthResult, error) {
	email, code = strings.TrimSpace(email), strings.TrimSpace(code)
	if email == "" || code == "" {
		return nil, fmt.Errorf("%w: email and code are required", domain.ErrValidationFailed)
	}

	challenge, err := s.store.Take(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrChallengeNotFound) {
			s.recordFailure(ctx, email, err)
			return nil, domain.ErrChallengeNotFound
		}
		return nil, fmt.Errorf("failed to load OTP challenge: %w", err)
	}

	if challenge.Expired(s.now()) {
		s.recordFailure(ctx, email, domain.ErrChallengeExpired)
		return nil, domain.ErrChallengeExpired
	}

	if !codeMatches(challenge.CodeHash, code) {
		s.recordFailure(ctx, email, domain.ErrChallengeInvalid)
		return nil, domain.ErrChallengeInvalid
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	result, err := issueSession(s.tokenSvc, user)
	if err != nil {
		return nil, err
	}

	recordEvent(ctx, s.auditLogger, domain.NewAuditEvent(domain.OTPVerifyEvent, email))
	return result, nil
}

func (s *OTPServiceImpl) recordFailure(ctx context.Context, email string, err error) {
	recordEvent(ctx, s.auditLogger, domain.NewAuditEvent(domain.OTPFailureEvent, email).WithError(err))
}

// Close waits for in-flight dispatches to finish
func (s *OTPServiceImpl) Close() {
	s.inflight.Wait()
}

func otpMessage(code string, ttl time.Duration) domain.Message {
	minutes := int(ttl.Minutes())
	if minutes < 1 {
		minutes = 1
	}
	return domain.Message{
		Subject: otpSubject,
		Body:    fmt.Sprintf("Your OTP is: %s. It will expire in %d minutes.", code, minutes),
		HTML:    fmt.Sprintf("<p>Your OTP is: <strong>%s</strong></p><p>It will expire in %d minutes.</p>", code, minutes),
	}
}

var _ domain.OTPService = (*OTPServiceImpl)(nil)
