package models

import "testing"

func TestBookingStatusValid(t *testing.T) {
	for _, s := range []BookingStatus{BookingPending, BookingConfirmed, BookingReadyForPickup, BookingCompleted, BookingCancelled} {
		if !s.Valid() {
			t.Fatalf("expected %q to be valid", s)
		}
	}
	if BookingStatus("shipped").Valid() {
		t.Fatal("expected unknown status to be invalid")
	}
}

func TestBookingStatusTransitions(t *testing.T) {
	cases := []struct {
		name    string
		from    BookingStatus
		to      BookingStatus
		allowed bool
	}{
		{name: "pending to confirmed", from: BookingPending, to: BookingConfirmed, allowed: true},
		{name: "pending to cancelled", from: BookingPending, to: BookingCancelled, allowed: true},
		{name: "pending cannot skip to ready", from: BookingPending, to: BookingReadyForPickup, allowed: false},
		{name: "pending cannot skip to completed", from: BookingPending, to: BookingCompleted, allowed: false},
		{name: "confirmed to ready", from: BookingConfirmed, to: BookingReadyForPickup, allowed: true},
		{name: "confirmed to cancelled", from: BookingConfirmed, to: BookingCancelled, allowed: true},
		{name: "ready to completed", from: BookingReadyForPickup, to: BookingCompleted, allowed: true},
		{name: "ready cannot be cancelled", from: BookingReadyForPickup, to: BookingCancelled, allowed: false},
		{name: "completed is final", from: BookingCompleted, to: BookingCancelled, allowed: false},
		{name: "cancelled is final", from: BookingCancelled, to: BookingPending, allowed: false},
		{name: "no self transition", from: BookingPending, to: BookingPending, allowed: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.from.CanTransition(tc.to); got != tc.allowed {
				t.Fatalf("transition %s -> %s: expected %v, got %v", tc.from, tc.to, tc.allowed, got)
			}
		})
	}
}

func TestBookingStatusTerminal(t *testing.T) {
	cases := []struct {
		status   BookingStatus
		terminal bool
	}{
		{BookingPending, false},
		{BookingConfirmed, false},
		{BookingReadyForPickup, false},
		{BookingCompleted, true},
		{BookingCancelled, true},
	}

	for _, tc := range cases {
		if got := tc.status.Terminal(); got != tc.terminal {
			t.Fatalf("%s: expected terminal=%v, got %v", tc.status, tc.terminal, got)
		}
	}
}
