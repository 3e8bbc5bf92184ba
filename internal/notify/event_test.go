package notify

import (
	"encoding/json"
	"testing"
)

func TestNewEventTopic(t *testing.T) {
	cases := []struct {
		name   string
		entity string
		action string
		topic  string
	}{
		{name: "booking created", entity: "booking", action: "created", topic: "booking.created"},
		{name: "trims whitespace", entity: " review ", action: " approved ", topic: "review.approved"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := NewEvent(tc.entity, tc.action, "1")
			if e.Topic != tc.topic {
				t.Fatalf("expected topic %q, got %q", tc.topic, e.Topic)
			}
			if e.Timestamp.IsZero() {
				t.Fatal("expected timestamp to be set")
			}
		})
	}
}

func TestEventWithUser(t *testing.T) {
	e := NewEvent("booking", "created", "7").WithUser(42)

	if e.Metadata["userId"] != "42" {
		t.Fatalf("expected userId metadata 42, got %q", e.Metadata["userId"])
	}
	if UserTopic(42) != "user.42" {
		t.Fatalf("unexpected user topic %q", UserTopic(42))
	}
}

func TestEventJSONShape(t *testing.T) {
	e := NewEvent("booking", "created", "7").
		WithUser(42).
		WithData(map[string]any{"booking_number": "NM-20260307-A1B2C3"})

	raw, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("could not marshal event: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("could not unmarshal event: %v", err)
	}

	for _, key := range []string{"entity", "action", "resourceId", "topic", "metadata", "data", "timestamp"} {
		if _, ok := decoded[key]; !ok {
			t.Fatalf("expected key %q in event JSON: %s", key, raw)
		}
	}
	if decoded["topic"] != "booking.created" {
		t.Fatalf("expected topic booking.created, got %v", decoded["topic"])
	}
}

func TestEventOmitsEmptyOptionalFields(t *testing.T) {
	raw, err := json.Marshal(NewEvent("vendor", "verified", "3"))
	if err != nil {
		t.Fatalf("could not marshal event: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("could not unmarshal event: %v", err)
	}

	if _, ok := decoded["metadata"]; ok {
		t.Fatal("expected metadata to be omitted when empty")
	}
	if _, ok := decoded["data"]; ok {
		t.Fatal("expected data to be omitted when empty")
	}
}
