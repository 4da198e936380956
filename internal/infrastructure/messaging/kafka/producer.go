package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/complytrack/complytrack/internal/config"
	"github.com/complytrack/complytrack/internal/domain/timeline"
	"github.com/complytrack/complytrack/internal/infrastructure/monitoring/logging"
	"github.com/complytrack/complytrack/pkg/errors"
)

// writerInterface abstracts kafka.Writer for testing.
type writerInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes engine events.  It satisfies both the generator's and
// the cleanup service's publisher contracts.
type Producer struct {
	writer writerInterface
	logger logging.Logger
}

// NewProducer builds a producer over the configured brokers.  Messages are
// keyed by client ID so per-client ordering survives partitioning.
func NewProducer(cfg config.KafkaConfig, log logging.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: kafka.RequiredAcks(cfg.RequiredAcks),
		// Topics are provisioned by operations; silent auto-creation hides
		// misconfigured environments.
		AllowAutoTopicCreation: false,
	}
	return &Producer{writer: writer, logger: log.Named("kafka")}
}

// NewProducerWithWriter wraps an existing writer, for tests.
func NewProducerWithWriter(w writerInterface, log logging.Logger) *Producer {
	return &Producer{writer: w, logger: log.Named("kafka")}
}

// RecordCreated publishes one event for a newly created work record.
func (p *Producer) RecordCreated(ctx context.Context, rec *timeline.WorkRecord) error {
	payload := RecordCreatedPayload{
		RecordID:      string(rec.ID),
		ClientID:      string(rec.ClientID),
		ActivityID:    string(rec.ActivityID),
		SubactivityID: string(rec.SubactivityID),
		BranchID:      string(rec.BranchID),
		FinancialYear: rec.FinancialYear,
		Period:        rec.Period,
		DueDate:       rec.DueDate,
		Jurisdiction:  rec.Jurisdiction,
	}
	return p.publish(ctx, TopicTimelineRecordCreated, string(rec.ClientID), payload)
}

// DuplicatesRemoved publishes the outcome of a destructive cleanup run.
func (p *Producer) DuplicatesRemoved(ctx context.Context, identities []string, deleted int64) error {
	payload := DuplicatesRemovedPayload{Identities: identities, DeletedCount: deleted}
	return p.publish(ctx, TopicTimelineDuplicatesRemoved, "cleanup", payload)
}

func (p *Producer) publish(ctx context.Context, topic, key string, payload interface{}) error {
	value, err := json.Marshal(newEnvelope(topic, payload))
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "encoding event payload")
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "publishing "+topic)
	}
	return nil
}

// Close flushes and releases the writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
