package audit

import (
	"nijimarket-backend/internal/auth"
	"nijimarket-backend/internal/database"
	"nijimarket-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Actor resolves the authenticated user for log attribution.
func Actor(c *fiber.Ctx) (uint, string, error) {
	userID, err := auth.CurrentUserID(c)
	if err != nil {
		return 0, "", err
	}

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		return 0, "", fiber.NewError(fiber.StatusInternalServerError, "User not found")
	}

	return userID, user.FullName, nil
}
