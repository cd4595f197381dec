/*
audit.go - Booking audit events

PURPOSE:
  Publishes every audit entry (booking created, booking canceled) to Kafka
  so downstream consumers (payments, housekeeping, notifications) learn
  about calendar changes without polling the database.

  FanoutAudit keeps the store's audit table authoritative: the entry is
  appended there first, then published to each sink. A sink failure is
  logged and never fails the booking operation.

MESSAGE FORMAT:
  Key:     booking ID (all events of one booking land on one partition)
  Value:   JSON generic.AuditEntry
  Headers: action

SEE ALSO:
  - generic/store.go: AuditLog interface
  - booking/service.go: Emits the entries
*/
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"github.com/warp/cabin-engine/generic"
)

// Sink receives audit entries after they are stored.
type Sink interface {
	Publish(ctx context.Context, entry generic.AuditEntry) error
	Close() error
}

// MessageWriter is the part of *kafka.Writer the sink uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// =============================================================================
// KAFKA SINK
// =============================================================================

type KafkaConfig struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
}

type KafkaAuditSink struct {
	writer  MessageWriter
	timeout time.Duration
}

// NewKafkaAuditSink builds a sink writing to cfg.Topic.
func NewKafkaAuditSink(cfg KafkaConfig) *KafkaAuditSink {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return NewKafkaAuditSinkWithWriter(writer, cfg.WriteTimeout)
}

func NewKafkaAuditSinkWithWriter(w MessageWriter, timeout time.Duration) *KafkaAuditSink {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &KafkaAuditSink{writer: w, timeout: timeout}
}

func (k *KafkaAuditSink) Publish(ctx context.Context, e generic.AuditEntry) error {
	msg, err := Message(e)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, k.timeout)
	defer cancel()
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish audit entry %s: %w", e.ID, err)
	}
	return nil
}

func (k *KafkaAuditSink) Close() error {
	return k.writer.Close()
}

// Message encodes an audit entry as a Kafka message.
func Message(e generic.AuditEntry) (kafka.Message, error) {
	value, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode audit entry: %w", err)
	}
	return kafka.Message{
		Key:     []byte(e.BookingID.String()),
		Value:   value,
		Headers: []kafka.Header{{Key: "action", Value: []byte(e.Action)}},
		Time:    e.Timestamp,
	}, nil
}

// =============================================================================
// FANOUT
// =============================================================================

// FanoutAudit is a generic.AuditLog that stores entries in primary and then
// publishes them to every sink.
type FanoutAudit struct {
	primary generic.AuditLog
	sinks   []Sink
	log     logrus.FieldLogger
}

var _ generic.AuditLog = (*FanoutAudit)(nil)

func NewFanoutAudit(primary generic.AuditLog, log logrus.FieldLogger, sinks ...Sink) *FanoutAudit {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &FanoutAudit{primary: primary, sinks: sinks, log: log}
}

func (f *FanoutAudit) Append(ctx context.Context, e generic.AuditEntry) error {
	if err := f.primary.Append(ctx, e); err != nil {
		return err
	}
	for _, s := range f.sinks {
		if err := s.Publish(ctx, e); err != nil {
			f.log.WithError(err).WithFields(logrus.Fields{
				"audit_id":   e.ID,
				"booking_id": e.BookingID,
				"action":     e.Action,
			}).Warn("audit publish failed")
		}
	}
	return nil
}

func (f *FanoutAudit) Query(ctx context.Context, filter generic.AuditFilter) ([]generic.AuditEntry, error) {
	return f.primary.Query(ctx, filter)
}

// Close closes every sink and returns the first error.
func (f *FanoutAudit) Close() error {
	var first error
	for _, s := range f.sinks {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
