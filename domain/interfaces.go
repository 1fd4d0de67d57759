package domain

import "context"

// UserRepository is the credential store
type UserRepository interface {
	// Create persists user if no record with the same email exists,
	// otherwise it returns ErrUserAlreadyExists.
	Create(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
}

// ChallengeStore holds at most one outstanding OTP challenge per identity.
// Implementations must make Take atomic: two concurrent calls for the same
// identity never both return the challenge.
type ChallengeStore interface {
	// Put stores ch, replacing any previous challenge for ch.Identity.
	Put(ctx context.Context, ch *Challenge) error
	// Take removes and returns the challenge for identity, or ErrChallengeNotFound.
	// Expired challenges are still returned so callers can tell them apart.
	Take(ctx context.Context, identity string) (*Challenge, error)
	// DeleteExpired evicts challenges past their expiry.
	DeleteExpired(ctx context.Context) error
}

// AuthService defines password authentication business logic
type AuthService interface {
	Register(ctx context.Context, in SignupInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	GetUserProfile(ctx context.Context, email string) (*User, error)
}

// OTPService defines the one-time passcode login path
type OTPService interface {
	Issue(ctx context.Context, email string) (*Challenge, error)
	Verify(ctx context.Context, email, code string) (*AuthResult, error)
}

// PasswordService defines password operations
type PasswordService interface {
	Hash(password string) (string, error)
	Verify(hashedPassword, password string) bool
}

// TokenService mints and validates session credentials
type TokenService interface {
	Issue(identity string) (*SessionToken, error)
	Validate(token string) (*TokenClaims, error)
}

// NotificationService delivers a message to a contact channel
type NotificationService interface {
	Send(ctx context.Context, to string, msg Message) error
}

// TokenClaims represents validated session token claims
type TokenClaims struct {
	ID        string `json:"jti"`
	Identity  string `json:"sub"`
	Issuer    string `json:"iss"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}
