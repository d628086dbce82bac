package messaging

import (
	"context"

	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/restaurant/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// LogEventPublisher records events in the application log. It stands in for
// Kafka when no broker is configured.
type LogEventPublisher struct {
	logger *zap.Logger
}

// NewLogEventPublisher creates a LogEventPublisher
func NewLogEventPublisher(log *zap.Logger) *LogEventPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogEventPublisher{logger: log.Named("events")}
}

// Publish logs each event at info level
func (p *LogEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, event := range events {
		logger.WithLogger(ctx, p.logger).Info("Domain event",
			zap.String("event_type", event.EventType()),
			zap.String("event_id", event.EventID().String()),
			zap.String("aggregate_type", event.AggregateType()),
			zap.String("aggregate_id", event.AggregateID().String()),
			zap.Time("occurred_at", event.OccurredAt()),
		)
	}
	return nil
}

// Close is a no-op
func (p *LogEventPublisher) Close() error {
	return nil
}

var _ shared.EventPublisher = (*LogEventPublisher)(nil)
