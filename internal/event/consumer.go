// Package event receives catalog mutation events from Kafka and feeds them to
// the sync coordinator. Events carry only the entity id: the coordinator
// re-reads state at execution time, so stale or reordered payloads cannot
// corrupt the index, and at-least-once redelivery is absorbed by coalescing.
package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	pkgkafka "github.com/softmaker-io/spree-searchkick/pkg/kafka"
)

// Kafka topics for product domain events consumed by the indexing pipeline.
var (
	TopicProductCreated = pkgkafka.Topic("product", "created")
	TopicProductUpdated = pkgkafka.Topic("product", "updated")
	TopicProductDeleted = pkgkafka.Topic("product", "deleted")
)

// Topics lists every topic the consumer subscribes to.
func Topics() []string {
	return []string{TopicProductCreated, TopicProductUpdated, TopicProductDeleted}
}

// ProductEventData is the payload of every product event: the entity id and
// nothing else worth trusting.
type ProductEventData struct {
	ID string `json:"id"`
}

// Mutator is the slice of the sync coordinator the consumer uses.
type Mutator interface {
	OnMutate(entityID string)
}

// Consumer maps product domain events onto mutation notifications.
type Consumer struct {
	mutator Mutator
	logger  *slog.Logger
}

// NewConsumer creates a new event consumer.
func NewConsumer(mutator Mutator, logger *slog.Logger) *Consumer {
	return &Consumer{
		mutator: mutator,
		logger:  logger,
	}
}

// Handle processes one event. Created, updated, and deleted all collapse to
// the same notification: the resync job discovers for itself whether the
// entity still exists.
func (c *Consumer) Handle(ctx context.Context, event *pkgkafka.Event) error {
	switch event.EventType {
	case TopicProductCreated, TopicProductUpdated, TopicProductDeleted:
	default:
		c.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}

	var data ProductEventData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		return fmt.Errorf("unmarshal %s data: %w", event.EventType, err)
	}
	if data.ID == "" {
		data.ID = event.AggregateID
	}
	if data.ID == "" {
		c.logger.WarnContext(ctx, "product event without an id, skipping",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}

	c.mutator.OnMutate(data.ID)

	c.logger.DebugContext(ctx, "scheduled resync from event",
		slog.String("event_type", event.EventType),
		slog.String("product_id", data.ID),
	)
	return nil
}
