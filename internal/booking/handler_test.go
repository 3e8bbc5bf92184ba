package booking

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nijimarket-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func TestDBErrorMapping(t *testing.T) {
	if e := dbError(gorm.ErrRecordNotFound, "Booking not found"); e.Code != http.StatusNotFound {
		t.Fatalf("missing row: expected 404, got %d", e.Code)
	}
	if e := dbError(errors.New("connection refused"), "Booking not found"); e.Code != http.StatusInternalServerError {
		t.Fatalf("driver error: expected 500, got %d", e.Code)
	}
}

func TestStatusUpdateColumns(t *testing.T) {
	now := time.Now()
	notes := "bring a cooler"

	cases := []struct {
		name       string
		status     models.BookingStatus
		notes      *string
		canNote    bool
		wantPickup bool
		wantNotes  bool
	}{
		{name: "confirm without notes", status: models.BookingConfirmed},
		{name: "complete sets pickup time", status: models.BookingCompleted, wantPickup: true},
		{name: "vendor notes applied", status: models.BookingConfirmed, notes: &notes, canNote: true, wantNotes: true},
		{name: "consumer cannot set notes", status: models.BookingCancelled, notes: &notes, canNote: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			updates := statusUpdateColumns(tc.status, tc.notes, tc.canNote, now)
			if updates["status"] != tc.status {
				t.Fatalf("expected status %q, got %v", tc.status, updates["status"])
			}
			if _, ok := updates["actual_pickup_time"]; ok != tc.wantPickup {
				t.Fatalf("actual_pickup_time present=%v, want %v", ok, tc.wantPickup)
			}
			if _, ok := updates["vendor_notes"]; ok != tc.wantNotes {
				t.Fatalf("vendor_notes present=%v, want %v", ok, tc.wantNotes)
			}
			if tc.wantNotes && updates["vendor_notes"] != notes {
				t.Fatalf("expected vendor_notes %q, got %v", notes, updates["vendor_notes"])
			}
		})
	}
}

func TestStatusChangeBody(t *testing.T) {
	cases := []struct {
		name   string
		role   models.UserRole
		status models.BookingStatus
		want   string
	}{
		{name: "vendor confirms", role: models.RoleVendor, status: models.BookingConfirmed, want: "The vendor confirmed your booking."},
		{name: "vendor ready", role: models.RoleVendor, status: models.BookingReadyForPickup, want: "Your produce is ready for pickup."},
		{name: "vendor completes", role: models.RoleVendor, status: models.BookingCompleted, want: "Your booking was completed. Enjoy!"},
		{name: "vendor cancels", role: models.RoleVendor, status: models.BookingCancelled, want: "The vendor cancelled this booking."},
		{name: "admin cancels", role: models.RoleAdmin, status: models.BookingCancelled, want: "This booking was cancelled."},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := statusChangeBody(tc.role, tc.status); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

// The id is parsed before any lookup, so these never reach the database.
func TestGetBookingHandlerRejectsMalformedID(t *testing.T) {
	app := fiber.New()
	app.Get("/bookings/:id", GetBookingHandler())

	for _, id := range []string{"12abc", "abc", "1.5", "0", "-3"} {
		t.Run(id, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/bookings/"+id, nil)

			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("id %q: expected 400, got %d", id, resp.StatusCode)
			}
		})
	}
}
