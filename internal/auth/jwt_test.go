package auth

import (
	"testing"
	"time"

	"nijimarket-backend/internal/config"
	"nijimarket-backend/internal/models"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:       "test-secret-that-is-long-enough-0000",
		AccessTokenTTL:  30 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	}
}

func testUser() *models.User {
	return &models.User{
		ID:    42,
		Email: "hanako@example.com",
		Role:  models.RoleVendor,
	}
}

func TestAccessTokenRoundtrip(t *testing.T) {
	cfg := testConfig()
	user := testUser()

	tokenStr, err := GenerateAccessToken(cfg, user)
	if err != nil {
		t.Fatalf("could not generate token: %v", err)
	}

	claims, err := ParseToken(cfg.JWTSecret, tokenStr)
	if err != nil {
		t.Fatalf("could not parse token: %v", err)
	}

	if claims.UserID != user.ID {
		t.Fatalf("expected user id %d, got %d", user.ID, claims.UserID)
	}
	if claims.Email != user.Email {
		t.Fatalf("expected email %q, got %q", user.Email, claims.Email)
	}
	if claims.Role != models.RoleVendor {
		t.Fatalf("expected role %q, got %q", models.RoleVendor, claims.Role)
	}
	if claims.TokenType != TokenTypeAccess {
		t.Fatalf("expected token type %q, got %q", TokenTypeAccess, claims.TokenType)
	}
}

func TestRefreshTokenCarriesType(t *testing.T) {
	cfg := testConfig()

	tokenStr, err := GenerateRefreshToken(cfg, testUser())
	if err != nil {
		t.Fatalf("could not generate token: %v", err)
	}

	claims, err := ParseToken(cfg.JWTSecret, tokenStr)
	if err != nil {
		t.Fatalf("could not parse token: %v", err)
	}
	if claims.TokenType != TokenTypeRefresh {
		t.Fatalf("expected token type %q, got %q", TokenTypeRefresh, claims.TokenType)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	cfg := testConfig()

	tokenStr, err := GenerateAccessToken(cfg, testUser())
	if err != nil {
		t.Fatalf("could not generate token: %v", err)
	}

	if _, err := ParseToken("a-completely-different-secret-000000", tokenStr); err == nil {
		t.Fatal("expected parse to fail with wrong secret")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	cfg := testConfig()
	cfg.AccessTokenTTL = -time.Minute

	tokenStr, err := GenerateAccessToken(cfg, testUser())
	if err != nil {
		t.Fatalf("could not generate token: %v", err)
	}

	if _, err := ParseToken(cfg.JWTSecret, tokenStr); err == nil {
		t.Fatal("expected parse to fail for expired token")
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	if _, err := ParseToken("whatever-secret", "not.a.token"); err == nil {
		t.Fatal("expected parse to fail for malformed token")
	}
}
