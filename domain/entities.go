package domain

import (
	"fmt"
	"strings"
	"time"
)

// User represents a registered identity in the credential store
type User struct {
	ID           uint
	Email        string // identity key
	Name         string
	Contact      string // email address or E.164 phone number the OTP is delivered to
	PasswordHash string
	Profile      map[string]string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SignupInput carries everything needed to create an identity
type SignupInput struct {
	Email    string
	Name     string
	Contact  string
	Password string
	Profile  map[string]string
}

// Normalize trims the identity fields and defaults the contact channel to the email
func (in *SignupInput) Normalize() {
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	in.Contact = strings.TrimSpace(in.Contact)
	if in.Contact == "" {
		in.Contact = in.Email
	}
}

// Validate reports the first missing required field
func (in SignupInput) Validate() error {
	switch {
	case strings.TrimSpace(in.Email) == "":
		return fmt.Errorf("%w: email is required", ErrValidationFailed)
	case strings.TrimSpace(in.Name) == "":
		return fmt.Errorf("%w: name is required", ErrValidationFailed)
	case in.Password == "":
		return fmt.Errorf("%w: password is required", ErrValidationFailed)
	}
	return nil
}

// AuthResult represents authentication outcome
type AuthResult struct {
	User        *User
	Identity    string
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
	ExpiresIn   int64
}

// Challenge is an outstanding OTP for one identity. Only the code hash is kept.
type Challenge struct {
	Identity  string    `json:"identity"`
	CodeHash  string    `json:"code_hash"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the challenge is past its expiry at now.
func (c *Challenge) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// SessionToken is a freshly minted bearer credential
type SessionToken struct {
	Token     string
	ID        string
	Identity  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Message is a human readable notification
type Message struct {
	Subject string
	Body    string
	HTML    string
}
