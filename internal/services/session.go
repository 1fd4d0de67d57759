package services

import (
	"context"
	"fmt"
	"log"

	"github.com/you/rakshasetu/domain"
)

const tokenTypeBearer = "Bearer"

// issueSession mints a session token for user and wraps it as an AuthResult
func issueSession(tokenSvc domain.TokenService, user *domain.User) (*domain.AuthResult, error) {
	token, err := tokenSvc.Issue(user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}

	return &domain.AuthResult{
		User:        user,
		Identity:    token.Identity,
		AccessToken: token.Token,
		TokenType:   tokenTypeBearer,
		ExpiresAt:   token.ExpiresAt,
		ExpiresIn:   int64(token.ExpiresAt.Sub(token.IssuedAt).Seconds()),
	}, nil
}

// recordEvent hands event to the audit sink. Sink failures never fail the caller.
func recordEvent(ctx context.Context, logger domain.AuditLogger, event *domain.AuditEvent) {
	if logger == nil {
		return
	}
	if err := logger.LogEvent(ctx, event); err != nil {
		log.Printf("AUDIT_FAILED: type=%s email=%s error=%v", event.EventType, event.Email, err)
	}
}
