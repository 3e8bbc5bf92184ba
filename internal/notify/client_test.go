package notify

import "testing"

func TestClientTrySend(t *testing.T) {
	client := NewClient(newFakeConn(), 1, 1)

	if !client.trySend([]byte("a")) {
		t.Fatal("expected send into empty buffer to succeed")
	}
	if client.trySend([]byte("b")) {
		t.Fatal("expected send into full buffer to fail")
	}
}

func TestClientTrySendAfterClose(t *testing.T) {
	client := NewClient(newFakeConn(), 1, 4)

	client.close()
	if client.trySend([]byte("a")) {
		t.Fatal("expected send after close to fail")
	}

	// close is idempotent
	client.close()
}
