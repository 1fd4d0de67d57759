package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/you/rakshasetu/domain"
)

// JWTServiceImpl implements domain.TokenService with HS256 signed tokens.
// Validation never touches a store.
type JWTServiceImpl struct {
	secretKey  []byte
	issuer     string
	sessionTTL time.Duration
	now        func() time.Time
}

// sessionClaims is the wire form of a session token
type sessionClaims struct {
	jwt.RegisteredClaims
}

// NewJWTService creates a new JWT service
func NewJWTService(secretKey string, issuer string, sessionTTL time.Duration) *JWTServiceImpl {
	return &JWTServiceImpl{
		secretKey:  []byte(secretKey),
		issuer:     issuer,
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

// WithClock replaces the time source used for issuing and validating
func (j *JWTServiceImpl) WithClock(now func() time.Time) *JWTServiceImpl {
	j.now = now
	return j
}

// Issue implements domain.TokenService
func (j *JWTServiceImpl) Issue(identity string) (*domain.SessionToken, error) {
	now := j.now().UTC().Truncate(time.Second)
	expiresAt := now.Add(j.sessionTTL)
	jti := uuid.NewString()

	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   identity,
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.secretKey)
	if err != nil {
		return nil, err
	}

	return &domain.SessionToken{
		Token:     signed,
		ID:        jti,
		Identity:  identity,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
	}, nil
}

// Validate implements domain.TokenService
func (j *JWTServiceImpl) Validate(tokenString string) (*domain.TokenClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(j.issuer),
		jwt.WithTimeFunc(j.now),
	)

	claims := &sessionClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return j.secretKey, nil
	})
	if err != nil {
		// claim errors are joined; a foreign issuer wins over expiry
		if errors.Is(err, jwt.ErrTokenInvalidIssuer) {
			return nil, domain.ErrTokenInvalid
		}
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}
	if !token.Valid || claims.Subject == "" {
		return nil, domain.ErrTokenInvalid
	}

	tokenClaims := &domain.TokenClaims{
		ID:        claims.ID,
		Identity:  claims.Subject,
		Issuer:    claims.Issuer,
		ExpiresAt: claims.ExpiresAt.Unix(),
	}
	if claims.IssuedAt != nil {
		tokenClaims.IssuedAt = claims.IssuedAt.Unix()
	}

	return tokenClaims, nil
}

var _ domain.TokenService = (*JWTServiceImpl)(nil)
