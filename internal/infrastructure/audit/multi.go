package audit

import (
	"context"
	"errors"

	"github.com/you/rakshasetu/domain"
)

// Multi fans an event out to every sink and joins their errors
type Multi []domain.AuditLogger

// LogEvent implements domain.AuditLogger
func (m Multi) LogEvent(ctx context.Context, event *domain.AuditEvent) error {
	var errs []error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.LogEvent(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ domain.AuditLogger = Multi(nil)
