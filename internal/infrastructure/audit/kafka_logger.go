package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/you/rakshasetu/domain"
)

// messageWriter is the part of *kafka.Writer the publisher needs
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaAuditLogger publishes audit events as JSON, keyed by identity so one
// identity's events stay ordered within a partition.
type KafkaAuditLogger struct {
	writer       messageWriter
	topic        string
	writeTimeout time.Duration
}

// NewKafkaAuditLogger creates a Kafka publisher. It returns nil when brokers or
// topic are empty; a nil *KafkaAuditLogger is a valid no-op logger.
//
// The writer runs in async mode: LogEvent only enqueues, and delivery failures
// surface through reportPublish instead of the caller.
func NewKafkaAuditLogger(brokers []string, topic string) *KafkaAuditLogger {
	if len(brokers) == 0 || topic == "" {
		return nil
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		Async:        true,
		Completion:   reportPublish(topic),
	}
	return &KafkaAuditLogger{writer: writer, topic: topic, writeTimeout: 5 * time.Second}
}

// reportPublish logs batches the async writer failed to deliver
func reportPublish(topic string) func([]kafka.Message, error) {
	return func(messages []kafka.Message, err error) {
		if err == nil {
			return
		}
		for _, m := range messages {
			log.Printf("AUDIT_PUBLISH_FAILED: topic=%s, key=%s, error=%v", topic, m.Key, err)
		}
	}
}

// LogEvent implements domain.AuditLogger
func (k *KafkaAuditLogger) LogEvent(ctx context.Context, event *domain.AuditEvent) error {
	if k == nil || k.writer == nil || event == nil {
		return nil
	}
	prepare(ctx, event)

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal audit event: %w", err)
	}

	writeCtx, cancel := context.WithTimeout(ctx, k.writeTimeout)
	defer cancel()
	if err := k.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   []byte(event.Email),
		Value: payload,
	}); err != nil {
		return fmt.Errorf("failed to publish audit event to %s: %w", k.topic, err)
	}
	return nil
}

// Close closes the Kafka writer. Safe to call on a nil logger.
func (k *KafkaAuditLogger) Close() error {
	if k == nil || k.writer == nil {
		return nil
	}
	return k.writer.Close()
}

var _ domain.AuditLogger = (*KafkaAuditLogger)(nil)
