// Package messaging delivers committed domain events to Kafka.
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	otelkafka "github.com/Trendyol/otel-kafka-konsumer"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/restaurant/backend/internal/infrastructure/config"
	"github.com/restaurant/backend/internal/infrastructure/logger"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"
)

// Message header keys set on every published event
const (
	HeaderEventType     = "event-type"
	HeaderEventID       = "event-id"
	HeaderAggregateType = "aggregate-type"
)

// Producer writes single messages to a topic
type Producer interface {
	WriteMessage(ctx context.Context, msg kafka.Message) error
	Close() error
}

// KafkaEventPublisher publishes domain events as JSON messages keyed by aggregate id,
// so every event of one bill or menu item lands on the same partition.
type KafkaEventPublisher struct {
	producer Producer
	topic    string
	logger   *zap.Logger
}

// NewKafkaEventPublisher creates a traced Kafka writer for cfg.Topic.
// Trace context is injected into message headers.
func NewKafkaEventPublisher(cfg config.KafkaConfig, log *zap.Logger) (*KafkaEventPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("messaging: at least one kafka broker is required")
	}
	if cfg.Topic == "" {
		return nil, errors.New("messaging: kafka topic is required")
	}

	base := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: kafka.RequireOne,
	}

	writer, err := otelkafka.NewWriter(base,
		otelkafka.WithTracerProvider(otel.GetTracerProvider()),
		otelkafka.WithPropagator(propagation.TraceContext{}),
		otelkafka.WithAttributes([]attribute.KeyValue{
			semconv.MessagingDestinationName(cfg.Topic),
			attribute.String("messaging.kafka.client_id", cfg.ClientID),
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("messaging: create kafka writer: %w", err)
	}

	log.Info("Kafka event publisher configured",
		zap.Strings("brokers", cfg.Brokers),
		zap.String("topic", cfg.Topic),
	)
	return NewKafkaEventPublisherWithProducer(writer, cfg.Topic, log), nil
}

// NewKafkaEventPublisherWithProducer wraps an existing producer
func NewKafkaEventPublisherWithProducer(producer Producer, topic string, log *zap.Logger) *KafkaEventPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &KafkaEventPublisher{
		producer: producer,
		topic:    topic,
		logger:   log.Named("kafka"),
	}
}

// Publish writes each event in order. A failed event does not stop the rest;
// all failures are returned joined.
func (p *KafkaEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	var errs []error
	for _, event := range events {
		msg, err := NewMessage(event)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := p.producer.WriteMessage(ctx, msg); err != nil {
			errs = append(errs, fmt.Errorf("messaging: write %s %s: %w", event.EventType(), event.EventID(), err))
			continue
		}
		logger.WithLogger(ctx, p.logger).Debug("Event published",
			zap.String("topic", p.topic),
			zap.String("event_type", event.EventType()),
			zap.String("event_id", event.EventID().String()),
			zap.String("aggregate_id", event.AggregateID().String()),
		)
	}
	return errors.Join(errs...)
}

// Close flushes pending messages and closes the producer
func (p *KafkaEventPublisher) Close() error {
	return p.producer.Close()
}

// NewMessage encodes an event as a Kafka message
func NewMessage(event shared.DomainEvent) (kafka.Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("messaging: encode %s: %w", event.EventType(), err)
	}
	return kafka.Message{
		Key:   []byte(event.AggregateID().String()),
		Value: payload,
		Time:  event.OccurredAt(),
		Headers: []kafka.Header{
			{Key: HeaderEventType, Value: []byte(event.EventType())},
			{Key: HeaderEventID, Value: []byte(event.EventID().String())},
			{Key: HeaderAggregateType, Value: []byte(event.AggregateType())},
		},
	}, nil
}

var _ shared.EventPublisher = (*KafkaEventPublisher)(nil)
