package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMemoryIdempotencyStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryIdempotencyStore(time.Minute)

	exists, err := store.Contains(ctx, "evt-1")
	if err != nil {
		t.Fatalf("Contains() error = %v", err)
	}
	if exists {
		t.Error("unseen event should not be contained")
	}

	if err := store.Add(ctx, "evt-1"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	exists, err = store.Contains(ctx, "evt-1")
	if err != nil {
		t.Fatalf("Contains() error = %v", err)
	}
	if !exists {
		t.Error("added event should be contained")
	}
}

func TestMemoryIdempotencyStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryIdempotencyStore(time.Nanosecond)

	if err := store.Add(ctx, "evt-1"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	time.Sleep(time.Millisecond)

	exists, err := store.Contains(ctx, "evt-1")
	if err != nil {
		t.Fatalf("Contains() error = %v", err)
	}
	if exists {
		t.Error("expired entry should not be contained")
	}
	if store.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after lazy expiry", store.Len())
	}
}

func TestIdempotentHandler_SkipsDuplicates(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryIdempotencyStore(time.Minute)

	calls := 0
	handler := IdempotentHandler(store, func(ctx context.Context, event *Event) error {
		calls++
		return nil
	}, discardLogger())

	event := &Event{EventID: "evt-1", EventType: "catalog.product.updated", AggregateID: "p-1"}

	if err := handler(ctx, event); err != nil {
		t.Fatalf("first delivery error = %v", err)
	}
	if err := handler(ctx, event); err != nil {
		t.Fatalf("second delivery error = %v", err)
	}
	if calls != 1 {
		t.Errorf("handler calls = %d, want 1", calls)
	}
}

func TestIdempotentHandler_DoesNotRecordFailures(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryIdempotencyStore(time.Minute)

	calls := 0
	handler := IdempotentHandler(store, func(ctx context.Context, event *Event) error {
		calls++
		if calls == 1 {
			return errors.New("transient")
		}
		return nil
	}, discardLogger())

	event := &Event{EventID: "evt-1", EventType: "catalog.product.updated", AggregateID: "p-1"}

	if err := handler(ctx, event); err == nil {
		t.Fatal("first delivery should fail")
	}
	if err := handler(ctx, event); err != nil {
		t.Fatalf("redelivery error = %v", err)
	}
	if calls != 2 {
		t.Errorf("handler calls = %d, want 2 (failure must not be recorded)", calls)
	}
}

func TestIdempotentHandler_NoEventID(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryIdempotencyStore(time.Minute)

	calls := 0
	handler := IdempotentHandler(store, func(ctx context.Context, event *Event) error {
		calls++
		return nil
	}, discardLogger())

	event := &Event{EventType: "catalog.product.updated"}
	_ = handler(ctx, event)
	_ = handler(ctx, event)

	if calls != 2 {
		t.Errorf("handler calls = %d, want 2 (no dedup without event ID)", calls)
	}
}
