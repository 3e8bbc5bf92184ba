package notify

import (
	"encoding/json"
	"sync"
	"testing"
	"time"
)

// fakeConn satisfies wsConn without a network connection.
type fakeConn struct {
	written chan []byte
}

func newFakeConn() *fakeConn {
	return &fakeConn{written: make(chan []byte, 16)}
}

func (f *fakeConn) WriteMessage(messageType int, data []byte) error {
	f.written <- data
	return nil
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	select {} // block forever; tests never read
}

func (f *fakeConn) Close() error { return nil }

func (f *fakeConn) next(t *testing.T) []byte {
	t.Helper()
	select {
	case data := <-f.written:
		return data
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a websocket write")
		return nil
	}
}

func TestHubAttachDetach(t *testing.T) {
	hub := NewHub()
	client := NewClient(newFakeConn(), 1, 4)

	hub.Attach(client, UserTopic(1), "booking.created")

	if got := hub.SubscriberCount(UserTopic(1)); got != 1 {
		t.Fatalf("expected 1 subscriber on user topic, got %d", got)
	}
	if got := hub.SubscriberCount("booking.created"); got != 1 {
		t.Fatalf("expected 1 subscriber on event topic, got %d", got)
	}

	hub.Detach(client)

	if got := hub.SubscriberCount(UserTopic(1)); got != 0 {
		t.Fatalf("expected 0 subscribers after detach, got %d", got)
	}
}

func TestHubBroadcastToUserTopic(t *testing.T) {
	hub := NewHub()

	conn := newFakeConn()
	client := NewClient(conn, 42, 4)
	hub.Attach(client, UserTopic(42))
	go client.WritePump()

	other := newFakeConn()
	bystander := NewClient(other, 7, 4)
	hub.Attach(bystander, UserTopic(7))
	go bystander.WritePump()

	hub.Broadcast(NewEvent("booking", "created", "9").WithUser(42))

	var decoded Event
	if err := json.Unmarshal(conn.next(t), &decoded); err != nil {
		t.Fatalf("could not decode broadcast frame: %v", err)
	}
	if decoded.Topic != "booking.created" {
		t.Fatalf("expected topic booking.created, got %q", decoded.Topic)
	}
	if decoded.Metadata["userId"] != "42" {
		t.Fatalf("expected userId 42, got %q", decoded.Metadata["userId"])
	}

	select {
	case data := <-other.written:
		t.Fatalf("bystander should not receive targeted event, got %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubBroadcastToEventTopic(t *testing.T) {
	hub := NewHub()

	conn := newFakeConn()
	client := NewClient(conn, 1, 4)
	hub.Attach(client, "vendor.verified")
	go client.WritePump()

	// untargeted events go to their entity.action topic
	hub.Broadcast(NewEvent("vendor", "verified", "3"))

	var decoded Event
	if err := json.Unmarshal(conn.next(t), &decoded); err != nil {
		t.Fatalf("could not decode broadcast frame: %v", err)
	}
	if decoded.ResourceID != "3" {
		t.Fatalf("expected resource id 3, got %q", decoded.ResourceID)
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub()

	// no WritePump running, buffer of 1 fills immediately
	client := NewClient(newFakeConn(), 5, 1)
	hub.Attach(client, UserTopic(5))

	event := NewEvent("booking", "status", "1").WithUser(5)
	hub.Broadcast(event)
	hub.Broadcast(event)

	deadline := time.Now().Add(time.Second)
	for hub.SubscriberCount(UserTopic(5)) != 0 {
		if time.Now().After(deadline) {
			t.Fatal("expected slow client to be detached")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// Concurrent broadcasts against a full-buffer client: eviction closes
// the send channel while other goroutines are still delivering, which
// must never panic or race.
func TestHubConcurrentBroadcastEviction(t *testing.T) {
	hub := NewHub()

	// no WritePump running, buffer fills after one frame
	client := NewClient(newFakeConn(), 9, 1)
	hub.Attach(client, UserTopic(9))

	event := NewEvent("booking", "status", "1").WithUser(9)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				hub.Broadcast(event)
			}
		}()
	}
	wg.Wait()

	deadline := time.Now().Add(time.Second)
	for hub.SubscriberCount(UserTopic(9)) != 0 {
		if time.Now().After(deadline) {
			t.Fatal("expected client to be evicted")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHubBroadcastNilEvent(t *testing.T) {
	hub := NewHub()
	hub.Broadcast(nil) // must not panic
}
