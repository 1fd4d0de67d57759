// Package audit records authentication audit events to the process log and,
// optionally, to a Kafka topic.
package audit

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/you/rakshasetu/domain"
)

// LogAuditLogger writes one `EVENT_TYPE: key=value ...` line per event
type LogAuditLogger struct {
	logger *log.Logger
}

// NewLogAuditLogger returns an audit logger writing to logger, or to the
// standard logger when nil.
func NewLogAuditLogger(logger *log.Logger) *LogAuditLogger {
	if logger == nil {
		logger = log.Default()
	}
	return &LogAuditLogger{logger: logger}
}

// LogEvent implements domain.AuditLogger
func (l *LogAuditLogger) LogEvent(ctx context.Context, event *domain.AuditEvent) error {
	prepare(ctx, event)
	l.logger.Print(formatEvent(event))
	return nil
}

// prepare fills the fields every sink expects
func prepare(ctx context.Context, event *domain.AuditEvent) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.IPAddress == "" && event.UserAgent == "" {
		event.WithClientContext(domain.ClientContextFrom(ctx))
	}
}

func formatEvent(event *domain.AuditEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: id=%s email=%s success=%t", event.EventType, event.ID, event.Email, event.Success)
	if event.IPAddress != "" {
		fmt.Fprintf(&b, " ip=%s", event.IPAddress)
	}
	if event.ErrorMsg != "" {
		fmt.Fprintf(&b, " error=%q", event.ErrorMsg)
	}

	keys := make([]string, 0, len(event.Metadata))
	for k := range event.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, event.Metadata[k])
	}

	fmt.Fprintf(&b, " timestamp=%s", event.Timestamp.UTC().Format(time.RFC3339))
	return b.String()
}

var _ domain.AuditLogger = (*LogAuditLogger)(nil)
