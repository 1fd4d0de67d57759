package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/you/rakshasetu/domain"
	"github.com/you/rakshasetu/internal/mocks"
)

func validSignup() domain.SignupInput {
	return domain.SignupInput{
		Email:    "newuser@example.com",
		Name:     "Asha Rao",
		Password: "securepassword123",
		Profile:  map[string]string{"address": "Pune", "aadhaar": "XXXX-XXXX-1234"},
	}
}

func TestAuthServiceImpl_Register(t *testing.T) {
	tests := []struct {
		name           string
		input          domain.SignupInput
		setupMocks     func(*mocks.MockUserRepository, *mocks.MockPasswordService, *mocks.MockTokenService)
		expectedError  error
		expectedMsg    string
		validateResult func(t *testing.T, result *domain.AuthResult, created *domain.User)
	}{
		{
			name:       "successful registration",
			input:      validSignup(),
			setupMocks: func(*mocks.MockUserRepository, *mocks.MockPasswordService, *mocks.MockTokenService) {},
			validateResult: func(t *testing.T, result *domain.AuthResult, created *domain.User) {
				assertAuthResult(t, result, "newuser@example.com")
				if created == nil {
					t.Fatal("expected user to be created")
				}
				if created.PasswordHash != "hashed_securepassword123" {
					t.Errorf("expected password hash %s, got %s", "hashed_securepassword123", created.PasswordHash)
				}
				if created.Contact != "newuser@example.com" {
					t.Errorf("expected contact to default to email, got %s", created.Contact)
				}
				if created.Profile["address"] != "Pune" {
					t.Errorf("expected profile to be kept, got %v", created.Profile)
				}
			},
		},
		{
			name: "explicit contact channel and padded fields",
			input: domain.SignupInput{
				Email:    "  sms@example.com ",
				Name:     " Ravi ",
				Contact:  "+919800000000",
				Password: "pw",
			},
			setupMocks: func(*mocks.MockUserRepository, *mocks.MockPasswordService, *mocks.MockTokenService) {},
			validateResult: func(t *testing.T, result *domain.AuthResult, created *domain.User) {
				assertAuthResult(t, result, "sms@example.com")
				if created.Contact != "+919800000000" || created.Name != "Ravi" {
					t.Errorf("unexpected stored user %+v", created)
				}
			},
		},
		{
			name:          "missing name",
			input:         domain.SignupInput{Email: "a@example.com", Password: "pw"},
			setupMocks:    func(*mocks.MockUserRepository, *mocks.MockPasswordService, *mocks.MockTokenService) {},
			expectedError: domain.ErrValidationFailed,
		},
		{
			name:          "missing password",
			input:         domain.SignupInput{Email: "a@example.com", Name: "A"},
			setupMocks:    func(*mocks.MockUserRepository, *mocks.MockPasswordService, *mocks.MockTokenService) {},
			expectedError: domain.ErrValidationFailed,
		},
		{
			name:  "user already exists",
			input: validSignup(),
			setupMocks: func(userRepo *mocks.MockUserRepository, _ *mocks.MockPasswordService, _ *mocks.MockTokenService) {
				userRepo.FindByEmailFunc = func(ctx context.Context, email string) (*domain.User, error) {
					return createValidUser(t), nil
				}
			},
			expectedError: domain.ErrUserAlreadyExists,
		},
		{
			name:  "duplicate detected at insert",
			input: validSignup(),
			setupMocks: func(userRepo *mocks.MockUserRepository, _ *mocks.MockPasswordService, _ *mocks.MockTokenService) {
				userRepo.CreateFunc = func(ctx context.Context, user *domain.User) error {
					return domain.ErrUserAlreadyExists
				}
			},
			expectedError: domain.ErrUserAlreadyExists,
		},
		{
			name:  "password hashing fails",
			input: validSignup(),
			setupMocks: func(_ *mocks.MockUserRepository, passwordSvc *mocks.MockPasswordService, _ *mocks.MockTokenService) {
				passwordSvc.HashFunc = func(password string) (string, error) {
					return "", errors.New("hashing failed")
				}
			},
			expectedMsg: "failed to hash password: hashing failed",
		},
		{
			name:  "user creation fails",
			input: validSignup(),
			setupMocks: func(userRepo *mocks.MockUserRepository, _ *mocks.MockPasswordService, _ *mocks.MockTokenService) {
				userRepo.CreateFunc = func(ctx context.Context, user *domain.User) error {
					return errors.New("database error")
				}
			},
			expectedMsg: "failed to create user: database error",
		},
		{
			name:  "lookup fails",
			input: validSignup(),
			setupMocks: func(userRepo *mocks.MockUserRepository, _ *mocks.MockPasswordService, _ *mocks.MockTokenService) {
				userRepo.FindByEmailFunc = func(ctx context.Context, email string) (*domain.User, error) {
					return nil, errors.New("connection reset")
				}
			},
			expectedMsg: "failed to look up user: connection reset",
		},
		{
			name:  "token issue fails",
			input: validSignup(),
			setupMocks: func(_ *mocks.MockUserRepository, _ *mocks.MockPasswordService, tokenSvc *mocks.MockTokenService) {
				tokenSvc.IssueFunc = func(identity string) (*domain.SessionToken, error) {
					return nil, errors.New("signing failed")
				}
			},
			expectedMsg: "failed to issue session token: signing failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userRepo := mocks.NewMockUserRepository()
			passwordSvc := mocks.NewMockPasswordService()
			tokenSvc := mocks.NewMockTokenService()
			auditLogger := mocks.NewMockAuditLogger()

			var created *domain.User
			userRepo.CreateFunc = func(ctx context.Context, user *domain.User) error {
				user.ID = 7
				created = user
				return nil
			}
			tt.setupMocks(userRepo, passwordSvc, tokenSvc)

			authService := NewAuthService(userRepo, passwordSvc, tokenSvc, auditLogger)
			result, err := authService.Register(context.Background(), tt.input)

			switch {
			case tt.expectedError != nil:
				if !errors.Is(err, tt.expectedError) {
					t.Fatalf("expected error %v, got %v", tt.expectedError, err)
				}
			case tt.expectedMsg != "":
				if err == nil || !strings.Contains(err.Error(), tt.expectedMsg) {
					t.Fatalf("expected error containing '%s', got %v", tt.expectedMsg, err)
				}
			default:
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
			}

			if tt.validateResult != nil {
				tt.validateResult(t, result, created)
				if types := auditLogger.EventTypes(); len(types) != 1 || types[0] != domain.UserRegistrationEvent {
					t.Errorf("expected a single registration event, got %v", types)
				}
			} else if result != nil {
				t.Error("expected result to be nil on failure")
			}
		})
	}
}

func TestAuthServiceImpl_Login(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		password      string
		setupMocks    func(*mocks.MockUserRepository, *mocks.MockPasswordService)
		expectedError error
		expectedEvent domain.AuditEventType
	}{
		{
			name:          "successful login",
			email:         "user@example.com",
			password:      "password123",
			expectedEvent: domain.UserLoginEvent,
		},
		{
			name:          "unknown identity",
			email:         "ghost@example.com",
			password:      "password123",
			expectedError: domain.ErrInvalidCredentials,
			expectedEvent: domain.UserLoginFailureEvent,
		},
		{
			name:          "wrong password",
			email:         "user@example.com",
			password:      "wrongpassword",
			expectedError: domain.ErrInvalidCredentials,
			expectedEvent: domain.UserLoginFailureEvent,
		},
		{
			name:          "missing password",
			email:         "user@example.com",
			expectedError: domain.ErrValidationFailed,
		},
		{
			name:          "missing email",
			password:      "password123",
			expectedError: domain.ErrValidationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userRepo := mocks.NewMockUserRepository()
			passwordSvc := mocks.NewMockPasswordService()
			auditLogger := mocks.NewMockAuditLogger()

			known := createValidUser(t)
			userRepo.FindByEmailFunc = func(ctx context.Context, email string) (*domain.User, error) {
				if email == known.Email {
					return known, nil
				}
				return nil, domain.ErrUserNotFound
			}
			if tt.setupMocks != nil {
				tt.setupMocks(userRepo, passwordSvc)
			}

			authService := NewAuthService(userRepo, passwordSvc, mocks.NewMockTokenService(), auditLogger)
			result, err := authService.Login(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				if !errors.Is(err, tt.expectedError) {
					t.Fatalf("expected error %v, got %v", tt.expectedError, err)
				}
				if result != nil {
					t.Error("expected result to be nil on failure")
				}
			} else {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				assertAuthResult(t, result, tt.email)
			}

			if tt.expectedEvent != "" {
				types := auditLogger.EventTypes()
				if len(types) != 1 || types[0] != tt.expectedEvent {
					t.Errorf("expected event %s, got %v", tt.expectedEvent, types)
				}
			}
		})
	}
}

func TestAuthServiceImpl_LoginUnknownIdentityRunsComparison(t *testing.T) {
	passwordSvc := mocks.NewMockPasswordService()

	authService := NewAuthService(mocks.NewMockUserRepository(), passwordSvc, mocks.NewMockTokenService(), nil)
	for i := 0; i < 3; i++ {
		_, err := authService.Login(context.Background(), "ghost@example.com", "password123")
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("expected invalid credentials, got %v", err)
		}
	}

	hashes := passwordSvc.VerifiedHashes()
	if len(hashes) != 3 {
		t.Fatalf("expected a comparison per attempt, got %d", len(hashes))
	}
	for _, h := range hashes {
		if h == "" {
			t.Error("dummy comparison should use a real hash")
		}
	}
}

func TestAuthServiceImpl_LoginRepositoryFailure(t *testing.T) {
	userRepo := mocks.NewMockUserRepository()
	userRepo.FindByEmailFunc = func(ctx context.Context, email string) (*domain.User, error) {
		return nil, errors.New("connection refused")
	}

	authService := NewAuthService(userRepo, mocks.NewMockPasswordService(), mocks.NewMockTokenService(), nil)
	_, err := authService.Login(context.Background(), "user@example.com", "password123")
	if err == nil || errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected infrastructure error, got %v", err)
	}
}

func TestAuthServiceImpl_GetUserProfile(t *testing.T) {
	userRepo := mocks.NewMockUserRepository()
	known := createValidUser(t)
	userRepo.FindByEmailFunc = func(ctx context.Context, email string) (*domain.User, error) {
		if email == known.Email {
			return known, nil
		}
		return nil, domain.ErrUserNotFound
	}
	authService := NewAuthService(userRepo, mocks.NewMockPasswordService(), mocks.NewMockTokenService(), nil)

	user, err := authService.GetUserProfile(context.Background(), known.Email)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if user.Name != known.Name {
		t.Errorf("expected name %s, got %s", known.Name, user.Name)
	}

	if _, err := authService.GetUserProfile(context.Background(), "ghost@example.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected user not found, got %v", err)
	}
}
