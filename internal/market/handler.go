package market

import (
	"strings"

	"nijimarket-backend/internal/audit"
	"nijimarket-backend/internal/config"
	"nijimarket-backend/internal/database"
	"nijimarket-backend/internal/models"
	"nijimarket-backend/internal/upload"

	"github.com/gofiber/fiber/v2"
)

type CreateMarketRequest struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Address       string   `json:"address"`
	City          string   `json:"city"`
	Prefecture    string   `json:"prefecture"`
	Country       string   `json:"country"`
	PostalCode    string   `json:"postal_code"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	MarketType    string   `json:"market_type"`
	OperatingDays string   `json:"operating_days"`
	OpeningTime   string   `json:"opening_time"`
	ClosingTime   string   `json:"closing_time"`
}

type UpdateMarketRequest struct {
	Name          *string  `json:"name"`
	Description   *string  `json:"description"`
	Address       *string  `json:"address"`
	City          *string  `json:"city"`
	Prefecture    *string  `json:"prefecture"`
	Country       *string  `json:"country"`
	PostalCode    *string  `json:"postal_code"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	MarketType    *string  `json:"market_type"`
	IsActive      *bool    `json:"is_active"`
	OperatingDays *string  `json:"operating_days"`
	OpeningTime   *string  `json:"opening_time"`
	ClosingTime   *string  `json:"closing_time"`
}

type MarketListItem struct {
	ID          uint     `json:"id"`
	Name        string   `json:"name"`
	City        string   `json:"city"`
	Prefecture  string   `json:"prefecture"`
	MarketType  string   `json:"market_type"`
	MainImage   string   `json:"main_image"`
	IsActive    bool     `json:"is_active"`
	VendorCount int64    `json:"vendor_count"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

type MarketResponse struct {
	ID            uint     `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Address       string   `json:"address"`
	City          string   `json:"city"`
	Prefecture    string   `json:"prefecture"`
	Country       string   `json:"country"`
	PostalCode    string   `json:"postal_code"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	MarketType    string   `json:"market_type"`
	IsActive      bool     `json:"is_active"`
	OperatingDays string   `json:"operating_days"`
	OpeningTime   string   `json:"opening_time"`
	ClosingTime   string   `json:"closing_time"`
	MainImage     string   `json:"main_image"`
	Images        string   `json:"images"`
	VendorCount   int64    `json:"vendor_count"`
	CreatedAt     string   `json:"created_at"`
}

type SuggestionItem struct {
	Name       string `json:"name"`
	City       string `json:"city"`
	Prefecture string `json:"prefecture"`
}

func toMarketResponse(m *models.Market, vendorCount int64) MarketResponse {
	return MarketResponse{
		ID:            m.ID,
		Name:          m.Name,
		Description:   m.Description,
		Address:       m.Address,
		City:          m.City,
		Prefecture:    m.Prefecture,
		Country:       m.Country,
		PostalCode:    m.PostalCode,
		Latitude:      m.Latitude,
		Longitude:     m.Longitude,
		MarketType:    m.MarketType,
		IsActive:      m.IsActive,
		OperatingDays: m.OperatingDays,
		OpeningTime:   m.OpeningTime,
		ClosingTime:   m.ClosingTime,
		MainImage:     m.MainImage,
		Images:        m.Images,
		VendorCount:   vendorCount,
		CreatedAt:     m.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// GET /api/v1/markets?city=&prefecture=&market_type=&active_only=&skip=&limit=
func ListMarketsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		type row struct {
			models.Market
			VendorCount int64
		}

		query := database.DB.Model(&models.Market{}).
			Select("markets.*, count(vendors.id) as vendor_count").
			Joins("LEFT JOIN vendors ON vendors.market_id = markets.id").
			Group("markets.id")

		if c.QueryBool("active_only", true) {
			query = query.Where("markets.is_active = ?", true)
		}
		if city := c.Query("city"); city != "" {
			query = query.Where("markets.city ILIKE ?", "%"+city+"%")
		}
		if prefecture := c.Query("prefecture"); prefecture != "" {
			query = query.Where("markets.prefecture ILIKE ?", "%"+prefecture+"%")
		}
		if marketType := c.Query("market_type"); marketType != "" {
			query = query.Where("markets.market_type = ?", marketType)
		}

		skip := c.QueryInt("skip", 0)
		limit := c.QueryInt("limit", 100)
		if limit <= 0 || limit > 500 {
			limit = 100
		}

		var rows []row
		if err := query.Order("markets.id asc").Offset(skip).Limit(limit).Scan(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list markets")
		}

		res := make([]MarketListItem, 0, len(rows))
		for _, r := range rows {
			res = append(res, MarketListItem{
				ID:          r.ID,
				Name:        r.Name,
				City:        r.City,
				Prefecture:  r.Prefecture,
				MarketType:  r.MarketType,
				MainImage:   r.MainImage,
				IsActive:    r.IsActive,
				VendorCount: r.VendorCount,
				Latitude:    r.Latitude,
				Longitude:   r.Longitude,
			})
		}
		return c.JSON(res)
	}
}

// GET /api/v1/markets/:id
func GetMarketHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var market models.Market
		if err := database.DB.First(&market, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Market not found")
		}

		var vendorCount int64
		database.DB.Model(&models.Vendor{}).Where("market_id = ?", market.ID).Count(&vendorCount)

		return c.JSON(toMarketResponse(&market, vendorCount))
	}
}

// POST /api/v1/markets (admin)
func CreateMarketHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateMarketRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" || body.Address == "" || body.City == "" || body.Prefecture == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name, address, city and prefecture are required")
		}

		var count int64
		database.DB.Model(&models.Market{}).
			Where("name = ? AND city = ?", body.Name, body.City).
			Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Market with this name already exists in this city")
		}

		country := body.Country
		if country == "" {
			country = "Japan"
		}

		market := models.Market{
			Name:          body.Name,
			Description:   body.Description,
			Address:       body.Address,
			City:          body.City,
			Prefecture:    body.Prefecture,
			Country:       country,
			PostalCode:    body.PostalCode,
			Latitude:      body.Latitude,
			Longitude:     body.Longitude,
			MarketType:    body.MarketType,
			IsActive:      true,
			OperatingDays: body.OperatingDays,
			OpeningTime:   body.OpeningTime,
			ClosingTime:   body.ClosingTime,
		}

		if err := database.DB.Create(&market).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create market")
		}

		if userID, userName, err := audit.Actor(c); err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "market",
				EntityID:    market.ID,
				Action:      models.AuditActionCreate,
				Description: "Market created: " + market.Name,
				After:       market,
			})
		}

		return c.Status(fiber.StatusCreated).JSON(toMarketResponse(&market, 0))
	}
}

// PUT /api/v1/markets/:id (admin)
func UpdateMarketHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var market models.Market
		if err := database.DB.First(&market, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Market not found")
		}
		before := market

		var body UpdateMarketRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.Name != nil && strings.TrimSpace(*body.Name) != "" {
			market.Name = strings.TrimSpace(*body.Name)
		}
		if body.Description != nil {
			market.Description = *body.Description
		}
		if body.Address != nil {
			market.Address = *body.Address
		}
		if body.City != nil {
			market.City = *body.City
		}
		if body.Prefecture != nil {
			market.Prefecture = *body.Prefecture
		}
		if body.Country != nil {
			market.Country = *body.Country
		}
		if body.PostalCode != nil {
			market.PostalCode = *body.PostalCode
		}
		if body.Latitude != nil {
			market.Latitude = body.Latitude
		}
		if body.Longitude != nil {
			market.Longitude = body.Longitude
		}
		if body.MarketType != nil {
			market.MarketType = *body.MarketType
		}
		if body.IsActive != nil {
			market.IsActive = *body.IsActive
		}
		if body.OperatingDays != nil {
			market.OperatingDays = *body.OperatingDays
		}
		if body.OpeningTime != nil {
			market.OpeningTime = *body.OpeningTime
		}
		if body.ClosingTime != nil {
			market.ClosingTime = *body.ClosingTime
		}

		if err := database.DB.Save(&market).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update market")
		}

		if userID, userName, err := audit.Actor(c); err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "market",
				EntityID:    market.ID,
				Action:      models.AuditActionUpdate,
				Description: "Market updated: " + market.Name,
				Before:      before,
				After:       market,
			})
		}

		var vendorCount int64
		database.DB.Model(&models.Vendor{}).Where("market_id = ?", market.ID).Count(&vendorCount)

		return c.JSON(toMarketResponse(&market, vendorCount))
	}
}

// DELETE /api/v1/markets/:id (admin). Markets with vendors are only
// deactivated so vendor profiles keep a valid reference.
func DeleteMarketHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var market models.Market
		if err := database.DB.First(&market, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Market not found")
		}

		var vendorCount int64
		database.DB.Model(&models.Vendor{}).Where("market_id = ?", market.ID).Count(&vendorCount)

		if vendorCount > 0 {
			market.IsActive = false
			if err := database.DB.Save(&market).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Could not deactivate market")
			}

			if userID, userName, err := audit.Actor(c); err == nil {
				_ = audit.WriteLog(audit.LogOptions{
					UserID:      userID,
					UserName:    userName,
					EntityType:  "market",
					EntityID:    market.ID,
					Action:      models.AuditActionUpdate,
					Description: "Market deactivated: " + market.Name,
					Before:      market,
					After:       market,
				})
			}
			return c.JSON(fiber.Map{"message": "Market deactivated successfully"})
		}

		if err := database.DB.Delete(&market).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete market")
		}

		if userID, userName, err := audit.Actor(c); err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "market",
				EntityID:    market.ID,
				Action:      models.AuditActionDelete,
				Description: "Market deleted: " + market.Name,
				Before:      market,
			})
		}

		return c.JSON(fiber.Map{"message": "Market deleted successfully"})
	}
}

// POST /api/v1/markets/:id/image (admin, multipart field "file")
func UploadMarketImageHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var market models.Market
		if err := database.DB.First(&market, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Market not found")
		}

		file, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Image file is required")
		}

		filename, err := upload.SaveImage(c, file, cfg.UploadDir, upload.KindMarkets)
		if err != nil {
			return err
		}

		if market.MainImage != "" {
			upload.DeleteImage(cfg.UploadDir, upload.KindMarkets, market.MainImage)
		}

		market.MainImage = filename
		if err := database.DB.Save(&market).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update market")
		}

		return c.JSON(fiber.Map{"message": "Image uploaded successfully", "filename": filename})
	}
}

// GET /api/v1/markets/suggestions?q=
func SuggestionsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := strings.TrimSpace(c.Query("q"))
		if q == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Query parameter q is required")
		}

		limit := c.QueryInt("limit", 5)
		if limit <= 0 || limit > 20 {
			limit = 5
		}

		var suggestions []SuggestionItem
		if err := database.DB.Model(&models.Market{}).
			Select("name, city, prefecture").
			Where("is_active = ? AND name ILIKE ?", true, "%"+q+"%").
			Distinct().
			Limit(limit).
			Scan(&suggestions).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not fetch suggestions")
		}

		return c.JSON(suggestions)
	}
}
