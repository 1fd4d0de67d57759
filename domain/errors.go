package domain

import "errors"

// Input errors
var (
	ErrValidationFailed = errors.New("validation failed")
)

// Authentication errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUnknownIdentity    = errors.New("unknown identity")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserAlreadyExists  = errors.New("user already exists")
)

// OTP errors
var (
	ErrChallengeNotFound = errors.New("otp challenge not found")
	ErrChallengeExpired  = errors.New("otp challenge has expired")
	ErrChallengeInvalid  = errors.New("invalid otp code")
)

// Token errors
var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token has expired")
)
