package kafka

import (
	"encoding/json"
	"testing"
)

func TestTopic(t *testing.T) {
	tests := []struct {
		domain, action, want string
	}{
		{"product", "updated", "catalog.product.updated"},
		{"product", "deleted", "catalog.product.deleted"},
		{"taxon", "moved", "catalog.taxon.moved"},
	}
	for _, tt := range tests {
		if got := Topic(tt.domain, tt.action); got != tt.want {
			t.Errorf("Topic(%q, %q) = %q, want %q", tt.domain, tt.action, got, tt.want)
		}
	}
}

func TestDLQTopic(t *testing.T) {
	if got := DLQTopic("catalog.product.updated"); got != "catalog.dlq.catalog.product.updated" {
		t.Errorf("DLQTopic = %q", got)
	}
}

func TestEvent_MarshalRoundTrip(t *testing.T) {
	event, err := NewEvent("catalog.product.updated", "p-1", "product", "catalog-service", map[string]string{"id": "p-1"})
	if err != nil {
		t.Fatalf("NewEvent() error = %v", err)
	}
	if event.EventID == "" {
		t.Error("EventID should be generated")
	}

	data, err := event.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	decoded, err := UnmarshalEvent(data)
	if err != nil {
		t.Fatalf("UnmarshalEvent() error = %v", err)
	}
	if decoded.EventID != event.EventID {
		t.Errorf("EventID = %q, want %q", decoded.EventID, event.EventID)
	}
	if decoded.AggregateID != "p-1" {
		t.Errorf("AggregateID = %q, want %q", decoded.AggregateID, "p-1")
	}

	var payload map[string]string
	if err := json.Unmarshal(decoded.Data, &payload); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
	if payload["id"] != "p-1" {
		t.Errorf("payload id = %q, want %q", payload["id"], "p-1")
	}
}

func TestUnmarshalEvent_Invalid(t *testing.T) {
	if _, err := UnmarshalEvent([]byte("{not json")); err == nil {
		t.Error("UnmarshalEvent should reject malformed JSON")
	}
}
