package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"nijimarket-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

func newTestApp(handlers ...fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Get("/protected", append(handlers, func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})...)
	return app
}

func TestJWTMiddleware(t *testing.T) {
	cfg := testConfig()

	access, err := GenerateAccessToken(cfg, testUser())
	if err != nil {
		t.Fatalf("could not generate access token: %v", err)
	}
	refresh, err := GenerateRefreshToken(cfg, testUser())
	if err != nil {
		t.Fatalf("could not generate refresh token: %v", err)
	}

	cases := []struct {
		name   string
		header string
		status int
	}{
		{name: "valid access token", header: "Bearer " + access, status: http.StatusOK},
		{name: "missing header", header: "", status: http.StatusUnauthorized},
		{name: "not bearer", header: "Basic abc123", status: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer not.a.token", status: http.StatusUnauthorized},
		{name: "refresh token rejected", header: "Bearer " + refresh, status: http.StatusUnauthorized},
	}

	app := newTestApp(JWTMiddleware(cfg))

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}

			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			if resp.StatusCode != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, resp.StatusCode)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	cfg := testConfig()

	vendorToken, err := GenerateAccessToken(cfg, testUser()) // role vendor
	if err != nil {
		t.Fatalf("could not generate token: %v", err)
	}

	admin := testUser()
	admin.Role = models.RoleAdmin
	adminToken, err := GenerateAccessToken(cfg, admin)
	if err != nil {
		t.Fatalf("could not generate token: %v", err)
	}

	app := newTestApp(JWTMiddleware(cfg), RequireRole(models.RoleAdmin))

	cases := []struct {
		name   string
		token  string
		status int
	}{
		{name: "admin allowed", token: adminToken, status: http.StatusOK},
		{name: "vendor forbidden", token: vendorToken, status: http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", "Bearer "+tc.token)

			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			if resp.StatusCode != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, resp.StatusCode)
			}
		})
	}
}
