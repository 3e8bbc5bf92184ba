package catalog

import (
	"strings"

	"nijimarket-backend/internal/audit"
	"nijimarket-backend/internal/database"
	"nijimarket-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateCategoryRequest struct {
	Name        string `json:"name"`
	NameJa      string `json:"name_ja"`
	NameNe      string `json:"name_ne"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name"`
	NameJa      *string `json:"name_ja"`
	NameNe      *string `json:"name_ne"`
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
	IsActive    *bool   `json:"is_active"`
}

type CategoryResponse struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	NameJa       string `json:"name_ja"`
	NameNe       string `json:"name_ne"`
	Description  string `json:"description"`
	Icon         string `json:"icon"`
	IsActive     bool   `json:"is_active"`
	ProductCount int64  `json:"product_count"`
}

func toCategoryResponse(cat *models.Category, productCount int64) CategoryResponse {
	return CategoryResponse{
		ID:           cat.ID,
		Name:         cat.Name,
		NameJa:       cat.NameJa,
		NameNe:       cat.NameNe,
		Description:  cat.Description,
		Icon:         cat.Icon,
		IsActive:     cat.IsActive,
		ProductCount: productCount,
	}
}

// GET /api/v1/categories?active_only=&skip=&limit=
func ListCategoriesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		type row struct {
			models.Category
			ProductCount int64
		}

		query := database.DB.Model(&models.Category{}).
			Select("categories.*, count(products.id) as product_count").
			Joins("LEFT JOIN products ON products.category_id = categories.id").
			Group("categories.id")

		if c.QueryBool("active_only", true) {
			query = query.Where("categories.is_active = ?", true)
		}

		skip := c.QueryInt("skip", 0)
		limit := c.QueryInt("limit", 100)
		if limit <= 0 || limit > 500 {
			limit = 100
		}

		var rows []row
		if err := query.Order("categories.id asc").Offset(skip).Limit(limit).Scan(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list categories")
		}

		res := make([]CategoryResponse, 0, len(rows))
		for i := range rows {
			res = append(res, toCategoryResponse(&rows[i].Category, rows[i].ProductCount))
		}
		return c.JSON(res)
	}
}

// GET /api/v1/categories/:id
func GetCategoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var category models.Category
		if err := database.DB.First(&category, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Category not found")
		}

		var productCount int64
		database.DB.Model(&models.Product{}).Where("category_id = ?", category.ID).Count(&productCount)

		return c.JSON(toCategoryResponse(&category, productCount))
	}
}

// POST /api/v1/categories (admin)
func CreateCategoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateCategoryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Category name is required")
		}

		var count int64
		database.DB.Model(&models.Category{}).Where("name = ?", body.Name).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Category with this name already exists")
		}

		category := models.Category{
			Name:        body.Name,
			NameJa:      body.NameJa,
			NameNe:      body.NameNe,
			Description: body.Description,
			Icon:        body.Icon,
			IsActive:    true,
		}

		if err := database.DB.Create(&category).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create category")
		}

		if userID, userName, err := audit.Actor(c); err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "category",
				EntityID:    category.ID,
				Action:      models.AuditActionCreate,
				Description: "Category created: " + category.Name,
				After:       category,
			})
		}

		return c.Status(fiber.StatusCreated).JSON(toCategoryResponse(&category, 0))
	}
}

// PUT /api/v1/categories/:id (admin)
func UpdateCategoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var category models.Category
		if err := database.DB.First(&category, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Category not found")
		}
		before := category

		var body UpdateCategoryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.Name != nil && strings.TrimSpace(*body.Name) != "" {
			name := strings.TrimSpace(*body.Name)
			var count int64
			database.DB.Model(&models.Category{}).
				Where("name = ? AND id <> ?", name, category.ID).
				Count(&count)
			if count > 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Category with this name already exists")
			}
			category.Name = name
		}
		if body.NameJa != nil {
			category.NameJa = *body.NameJa
		}
		if body.NameNe != nil {
			category.NameNe = *body.NameNe
		}
		if body.Description != nil {
			category.Description = *body.Description
		}
		if body.Icon != nil {
			category.Icon = *body.Icon
		}
		if body.IsActive != nil {
			category.IsActive = *body.IsActive
		}

		if err := database.DB.Save(&category).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update category")
		}

		if userID, userName, err := audit.Actor(c); err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "category",
				EntityID:    category.ID,
				Action:      models.AuditActionUpdate,
				Description: "Category updated: " + category.Name,
				Before:      before,
				After:       category,
			})
		}

		var productCount int64
		database.DB.Model(&models.Product{}).Where("category_id = ?", category.ID).Count(&productCount)

		return c.JSON(toCategoryResponse(&category, productCount))
	}
}

// DELETE /api/v1/categories/:id (admin). Refused while products exist.
func DeleteCategoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var category models.Category
		if err := database.DB.First(&category, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Category not found")
		}

		var productCount int64
		database.DB.Model(&models.Product{}).Where("category_id = ?", category.ID).Count(&productCount)
		if productCount > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Cannot delete category with existing products")
		}

		if err := database.DB.Delete(&category).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete category")
		}

		if userID, userName, err := audit.Actor(c); err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "category",
				EntityID:    category.ID,
				Action:      models.AuditActionDelete,
				Description: "Category deleted: " + category.Name,
				Before:      category,
			})
		}

		return c.JSON(fiber.Map{"message": "Category deleted successfully"})
	}
}
