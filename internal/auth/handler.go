package auth

import (
	"encoding/json"
	"strings"

	"nijimarket-backend/internal/config"
	"nijimarket-backend/internal/database"
	"nijimarket-backend/internal/models"
	"nijimarket-backend/internal/upload"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type RegisterRequest struct {
	Email      string          `json:"email"`
	Password   string          `json:"password"`
	FullName   string          `json:"full_name"`
	Phone      *string         `json:"phone"`
	Role       models.UserRole `json:"role"`
	Address    string          `json:"address"`
	City       string          `json:"city"`
	Prefecture string          `json:"prefecture"`
	Country    string          `json:"country"`
	PostalCode string          `json:"postal_code"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type UpdateProfileRequest struct {
	FullName   *string `json:"full_name"`
	Phone      *string `json:"phone"`
	Address    *string `json:"address"`
	City       *string `json:"city"`
	Prefecture *string `json:"prefecture"`
	PostalCode *string `json:"postal_code"`
}

type UserResponse struct {
	ID           uint            `json:"id"`
	Email        string          `json:"email"`
	Phone        *string         `json:"phone"`
	FullName     string          `json:"full_name"`
	Role         models.UserRole `json:"role"`
	IsActive     bool            `json:"is_active"`
	IsVerified   bool            `json:"is_verified"`
	ProfileImage string          `json:"profile_image"`
	Address      string          `json:"address"`
	City         string          `json:"city"`
	Prefecture   string          `json:"prefecture"`
	Country      string          `json:"country"`
	PostalCode   string          `json:"postal_code"`
	CreatedAt    string          `json:"created_at"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"` // seconds
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Phone:        u.Phone,
		FullName:     u.FullName,
		Role:         u.Role,
		IsActive:     u.IsActive,
		IsVerified:   u.IsVerified,
		ProfileImage: u.ProfileImage,
		Address:      u.Address,
		City:         u.City,
		Prefecture:   u.Prefecture,
		Country:      u.Country,
		PostalCode:   u.PostalCode,
		CreatedAt:    u.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func tokenPair(cfg *config.Config, user *models.User) (*TokenResponse, error) {
	access, err := GenerateAccessToken(cfg, user)
	if err != nil {
		return nil, err
	}
	refresh, err := GenerateRefreshToken(cfg, user)
	if err != nil {
		return nil, err
	}
	return &TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int(cfg.AccessTokenTTL.Seconds()),
	}, nil
}

func RegisterHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))
		body.FullName = strings.TrimSpace(body.FullName)

		if body.Email == "" || body.Password == "" || body.FullName == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Email, password and full name are required")
		}
		if len(body.Password) < 8 {
			return fiber.NewError(fiber.StatusBadRequest, "Password must be at least 8 characters long")
		}
		if body.Phone != nil && len(strings.TrimSpace(*body.Phone)) > 0 && len(strings.TrimSpace(*body.Phone)) < 10 {
			return fiber.NewError(fiber.StatusBadRequest, "Phone number must be at least 10 digits")
		}

		switch body.Role {
		case "":
			body.Role = models.RoleConsumer
		case models.RoleConsumer, models.RoleVendor:
			// self-service roles
		default:
			return fiber.NewError(fiber.StatusBadRequest, "Invalid role")
		}

		var count int64
		database.DB.Model(&models.User{}).Where("email = ?", body.Email).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Email already registered")
		}

		if body.Phone != nil && strings.TrimSpace(*body.Phone) != "" {
			phone := strings.TrimSpace(*body.Phone)
			body.Phone = &phone
			database.DB.Model(&models.User{}).Where("phone = ?", phone).Count(&count)
			if count > 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Phone number already registered")
			}
		} else {
			body.Phone = nil
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not hash password")
		}

		country := body.Country
		if country == "" {
			country = "Japan"
		}

		user := models.User{
			Email:        body.Email,
			Phone:        body.Phone,
			PasswordHash: string(hash),
			FullName:     body.FullName,
			Role:         body.Role,
			IsActive:     true,
			Address:      body.Address,
			City:         body.City,
			Prefecture:   body.Prefecture,
			Country:      country,
			PostalCode:   body.PostalCode,
		}

		if err := database.DB.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create user")
		}

		return c.Status(fiber.StatusCreated).JSON(toUserResponse(&user))
	}
}

func LoginHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))

		var user models.User
		if err := database.DB.Where("email = ?", body.Email).First(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Incorrect email or password")
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Incorrect email or password")
		}

		if !user.IsActive {
			return fiber.NewError(fiber.StatusBadRequest, "Inactive user account")
		}

		tokens, err := tokenPair(cfg, &user)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create tokens")
		}

		return c.JSON(tokens)
	}
}

func RefreshHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RefreshRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		claims, err := ParseToken(cfg.JWTSecret, body.RefreshToken)
		if err != nil || claims.TokenType != TokenTypeRefresh {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid refresh token")
		}

		var user models.User
		if err := database.DB.First(&user, claims.UserID).Error; err != nil || !user.IsActive {
			return fiber.NewError(fiber.StatusUnauthorized, "User not found or inactive")
		}

		tokens, err := tokenPair(cfg, &user)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create tokens")
		}

		return c.JSON(tokens)
	}
}

func MeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := CurrentUserID(c)
		if err != nil {
			return err
		}

		var user models.User
		if err := database.DB.First(&user, userID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		}

		return c.JSON(toUserResponse(&user))
	}
}

func UpdateProfileHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := CurrentUserID(c)
		if err != nil {
			return err
		}

		var body UpdateProfileRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		var user models.User
		if err := database.DB.First(&user, userID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		}

		if body.FullName != nil && strings.TrimSpace(*body.FullName) != "" {
			user.FullName = strings.TrimSpace(*body.FullName)
		}
		if body.Phone != nil {
			phone := strings.TrimSpace(*body.Phone)
			if phone == "" {
				user.Phone = nil
			} else {
				if len(phone) < 10 {
					return fiber.NewError(fiber.StatusBadRequest, "Phone number must be at least 10 digits")
				}
				var count int64
				database.DB.Model(&models.User{}).Where("phone = ? AND id <> ?", phone, user.ID).Count(&count)
				if count > 0 {
					return fiber.NewError(fiber.StatusBadRequest, "Phone number already registered")
				}
				user.Phone = &phone
			}
		}
		if body.Address != nil {
			user.Address = *body.Address
		}
		if body.City != nil {
			user.City = *body.City
		}
		if body.Prefecture != nil {
			user.Prefecture = *body.Prefecture
		}
		if body.PostalCode != nil {
			user.PostalCode = *body.PostalCode
		}

		if err := database.DB.Save(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update profile")
		}

		return c.JSON(toUserResponse(&user))
	}
}

func ChangePasswordHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := CurrentUserID(c)
		if err != nil {
			return err
		}

		var body ChangePasswordRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if len(body.NewPassword) < 8 {
			return fiber.NewError(fiber.StatusBadRequest, "Password must be at least 8 characters long")
		}

		var user models.User
		if err := database.DB.First(&user, userID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.CurrentPassword)); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Incorrect current password")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not hash password")
		}

		user.PasswordHash = string(hash)
		if err := database.DB.Save(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update password")
		}

		return c.JSON(fiber.Map{"message": "Password changed successfully"})
	}
}

// POST /api/v1/auth/me/image (multipart field "file")
func UploadProfileImageHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := CurrentUserID(c)
		if err != nil {
			return err
		}

		var user models.User
		if err := database.DB.First(&user, userID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		}

		file, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Image file is required")
		}

		filename, err := upload.SaveImage(c, file, cfg.UploadDir, upload.KindProfiles)
		if err != nil {
			return err
		}

		if user.ProfileImage != "" {
			upload.DeleteImage(cfg.UploadDir, upload.KindProfiles, user.ProfileImage)
		}

		user.ProfileImage = filename
		if err := database.DB.Save(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update profile")
		}

		return c.JSON(fiber.Map{"message": "Image uploaded successfully", "filename": filename})
	}
}

func LogoutHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Stateless tokens: the client discards its pair.
		return c.JSON(fiber.Map{"message": "Successfully logged out"})
	}
}

// ---------------------------------
// Admin user management
// ---------------------------------

func ListUsersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		skip := c.QueryInt("skip", 0)
		limit := c.QueryInt("limit", 100)
		if limit <= 0 || limit > 500 {
			limit = 100
		}

		query := database.DB.Model(&models.User{}).Order("id asc")
		if role := c.Query("role"); role != "" {
			query = query.Where("role = ?", role)
		}

		var users []models.User
		if err := query.Offset(skip).Limit(limit).Find(&users).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list users")
		}

		res := make([]UserResponse, 0, len(users))
		for i := range users {
			res = append(res, toUserResponse(&users[i]))
		}
		return c.JSON(res)
	}
}

func ToggleUserActiveHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var user models.User
		if err := database.DB.First(&user, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		}

		before := user
		user.IsActive = !user.IsActive
		if err := database.DB.Save(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update user")
		}

		statusText := "deactivated"
		if user.IsActive {
			statusText = "activated"
		}

		// The audit package depends on this one, so the log row is
		// written directly here.
		if actorID, err := CurrentUserID(c); err == nil {
			var actor models.User
			database.DB.First(&actor, actorID)

			beforeJSON, _ := json.Marshal(fiber.Map{"is_active": before.IsActive})
			afterJSON, _ := json.Marshal(fiber.Map{"is_active": user.IsActive})
			database.DB.Create(&models.AuditLog{
				UserID:      actorID,
				UserName:    actor.FullName,
				EntityType:  "user",
				EntityID:    user.ID,
				Action:      models.AuditActionUpdate,
				Description: "User " + statusText + ": " + user.Email,
				BeforeData:  string(beforeJSON),
				AfterData:   string(afterJSON),
			})
		}

		return c.JSON(fiber.Map{"message": "User " + statusText + " successfully"})
	}
}
