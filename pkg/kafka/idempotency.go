package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// IdempotencyStore is the interface for checking and storing processed event IDs.
// Implementations must be safe for concurrent use.
type IdempotencyStore interface {
	// Contains returns true if the event ID has already been processed.
	Contains(ctx context.Context, eventID string) (bool, error)
	// Add marks an event ID as processed. It should be called after successful processing.
	Add(ctx context.Context, eventID string) error
}

// MemoryIdempotencyStore is an in-memory implementation of IdempotencyStore.
// Suitable for development and single-instance deployments. Entries expire
// after the configured TTL to bound memory usage.
type MemoryIdempotencyStore struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	ttl     time.Duration
}

// NewMemoryIdempotencyStore creates a new in-memory idempotency store with the
// given TTL. Expired entries are lazily cleaned up on access.
func NewMemoryIdempotencyStore(ttl time.Duration) *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{
		entries: make(map[string]time.Time),
		ttl:     ttl,
	}
}

// Contains checks if the event ID exists and is not expired.
func (s *MemoryIdempotencyStore) Contains(_ context.Context, eventID string) (bool, error) {
	s.mu.RLock()
	ts, exists := s.entries[eventID]
	s.mu.RUnlock()

	if !exists {
		return false, nil
	}

	// Lazily expire old entries.
	if time.Since(ts) > s.ttl {
		s.mu.Lock()
		delete(s.entries, eventID)
		s.mu.Unlock()
		return false, nil
	}

	return true, nil
}

// Add marks the event ID as processed with the current timestamp.
func (s *MemoryIdempotencyStore) Add(_ context.Context, eventID string) error {
	s.mu.Lock()
	s.entries[eventID] = time.Now()
	s.mu.Unlock()
	return nil
}

// Len returns the number of entries in the store (including potentially expired ones).
func (s *MemoryIdempotencyStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// RedisIdempotencyStore is a Redis-backed implementation of IdempotencyStore
// for multi-instance deployments where at-least-once delivery would otherwise
// reprocess events across consumers.
type RedisIdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisIdempotencyStore creates a Redis-backed idempotency store. Keys are
// namespaced under the given prefix and expire after the TTL.
func NewRedisIdempotencyStore(client *redis.Client, prefix string, ttl time.Duration) *RedisIdempotencyStore {
	if prefix == "" {
		prefix = "idempotency"
	}
	return &RedisIdempotencyStore{
		client: client,
		ttl:    ttl,
		prefix: prefix,
	}
}

func (s *RedisIdempotencyStore) key(eventID string) string {
	return fmt.Sprintf("%s:%s", s.prefix, eventID)
}

// Contains checks whether the event ID has a live key in Redis.
func (s *RedisIdempotencyStore) Contains(ctx context.Context, eventID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(eventID)).Result()
	if err != nil {
		return false, fmt.Errorf("idempotency exists: %w", err)
	}
	return n > 0, nil
}

// Add records the event ID with the configured TTL.
func (s *RedisIdempotencyStore) Add(ctx context.Context, eventID string) error {
	if err := s.client.Set(ctx, s.key(eventID), "1", s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency set: %w", err)
	}
	return nil
}

// IdempotentHandler wraps a Handler with deduplication logic. If the event's
// EventID has already been processed (according to the store), the message is
// skipped and nil is returned.
func IdempotentHandler(store IdempotencyStore, inner Handler, logger *slog.Logger) Handler {
	return func(ctx context.Context, event *Event) error {
		if event.EventID == "" {
			// No event ID, cannot deduplicate.
			return inner(ctx, event)
		}

		exists, err := store.Contains(ctx, event.EventID)
		if err != nil {
			logger.Warn("idempotency store lookup failed, processing anyway",
				slog.String("event_id", event.EventID),
				slog.String("error", err.Error()),
			)
			// On store failure, process the message rather than risk data loss.
			return inner(ctx, event)
		}

		if exists {
			ConsumerMessagesDuplicate.WithLabelValues(event.EventType, "").Inc()
			logger.Debug("skipping duplicate event",
				slog.String("event_id", event.EventID),
				slog.String("event_type", event.EventType),
				slog.String("aggregate_id", event.AggregateID),
			)
			return nil
		}

		if err := inner(ctx, event); err != nil {
			return err
		}

		// Mark as processed only after successful handling.
		if addErr := store.Add(ctx, event.EventID); addErr != nil {
			logger.Warn("failed to record event ID in idempotency store",
				slog.String("event_id", event.EventID),
				slog.String("error", addErr.Error()),
			)
		}

		return nil
	}
}
