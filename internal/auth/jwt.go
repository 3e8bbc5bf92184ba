package auth

import (
	"fmt"
	"time"

	"nijimarket-backend/internal/config"
	"nijimarket-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

type JWTCustomClaims struct {
	UserID    uint            `json:"user_id"`
	Email     string          `json:"email"`
	Role      models.UserRole `json:"role"`
	TokenType string          `json:"typ"`
	jwt.RegisteredClaims
}

func generateToken(cfg *config.Config, user *models.User, tokenType string, ttl time.Duration) (string, error) {
	claims := &JWTCustomClaims{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

func GenerateAccessToken(cfg *config.Config, user *models.User) (string, error) {
	return generateToken(cfg, user, TokenTypeAccess, cfg.AccessTokenTTL)
}

func GenerateRefreshToken(cfg *config.Config, user *models.User) (string, error) {
	return generateToken(cfg, user, TokenTypeRefresh, cfg.RefreshTokenTTL)
}

// ParseToken validates signature and expiry and returns the claims.
// Callers must still check TokenType for the expected use.
func ParseToken(secret, tokenStr string) (*JWTCustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &JWTCustomClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*JWTCustomClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
