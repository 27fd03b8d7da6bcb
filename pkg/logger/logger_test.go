package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func TestWithContext_CorrelationID(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("test", "info", &buf)

	ctx := WithCorrelationID(context.Background(), "req-123")
	cl := WithContext(ctx, l)
	cl.Info("hello")

	var out map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if got := out["correlation_id"]; got != "req-123" {
		t.Errorf("correlation_id = %v, want %q", got, "req-123")
	}
	if got := out["service"]; got != "test" {
		t.Errorf("service = %v, want %q", got, "test")
	}
}

func TestWithContext_NoSpan(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("test", "info", &buf)

	cl := WithContext(context.Background(), l)
	cl.Info("no span")

	var out map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if _, ok := out["trace_id"]; ok {
		t.Error("trace_id should not be present when no span in context")
	}
}

func TestWithContext_WithValidSpan(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("test", "info", &buf)

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	cl := WithContext(ctx, l)
	cl.Info("with span")

	var out map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if got := out["trace_id"]; got != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("trace_id = %v, want %q", got, "4bf92f3577b34da6a3ce929d0e0e4736")
	}
}

func TestFromContext_Default(t *testing.T) {
	l := FromContext(context.Background())
	if l == nil {
		t.Fatal("FromContext should never return nil")
	}
}

func TestNewContext_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("test", "debug", &buf)

	ctx := NewContext(context.Background(), l)
	if got := FromContext(ctx); got != l {
		t.Error("FromContext should return the stored logger")
	}
}
