package review

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestValidRating(t *testing.T) {
	cases := []struct {
		rating int
		valid  bool
	}{
		{0, false},
		{1, true},
		{3, true},
		{5, true},
		{6, false},
		{-1, false},
	}

	for _, tc := range cases {
		if got := validRating(tc.rating); got != tc.valid {
			t.Fatalf("rating %d: expected %v, got %v", tc.rating, tc.valid, got)
		}
	}
}

// The vendor id is parsed before any lookup, so these never reach the
// database.
func TestVendorReviewsHandlerRejectsMalformedID(t *testing.T) {
	app := fiber.New()
	app.Get("/vendors/:id/reviews", VendorReviewsHandler())

	for _, id := range []string{"7xyz", "xyz", "0", "-1"} {
		t.Run(id, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/vendors/"+id+"/reviews", nil)

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
