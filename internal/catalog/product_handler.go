package catalog

import (
	"strings"
	"time"

	"nijimarket-backend/internal/auth"
	"nijimarket-backend/internal/config"
	"nijimarket-backend/internal/database"
	"nijimarket-backend/internal/models"
	"nijimarket-backend/internal/upload"

	"github.com/gofiber/fiber/v2"
)

type CreateProductRequest struct {
	VendorID       *uint    `json:"vendor_id"` // admin only: create for any vendor
	CategoryID     uint     `json:"category_id"`
	Name           string   `json:"name"`
	NameJa         string   `json:"name_ja"`
	NameNe         string   `json:"name_ne"`
	Description    string   `json:"description"`
	DescriptionJa  string   `json:"description_ja"`
	DescriptionNe  string   `json:"description_ne"`
	PricePerUnit   float64  `json:"price_per_unit"`
	Unit           string   `json:"unit"`
	MinimumOrder   float64  `json:"minimum_order"`
	StockQuantity  *float64 `json:"stock_quantity"`
	IsOrganic      bool     `json:"is_organic"`
	HarvestDate    *string  `json:"harvest_date"` // "2025-08-20"
	OriginLocation string   `json:"origin_location"`
}

type UpdateProductRequest struct {
	CategoryID     *uint    `json:"category_id"`
	Name           *string  `json:"name"`
	NameJa         *string  `json:"name_ja"`
	NameNe         *string  `json:"name_ne"`
	Description    *string  `json:"description"`
	DescriptionJa  *string  `json:"description_ja"`
	DescriptionNe  *string  `json:"description_ne"`
	PricePerUnit   *float64 `json:"price_per_unit"`
	Unit           *string  `json:"unit"`
	MinimumOrder   *float64 `json:"minimum_order"`
	StockQuantity  *float64 `json:"stock_quantity"`
	IsAvailable    *bool    `json:"is_available"`
	IsOrganic      *bool    `json:"is_organic"`
	HarvestDate    *string  `json:"harvest_date"`
	OriginLocation *string  `json:"origin_location"`
}

type ProductListItem struct {
	ID            uint     `json:"id"`
	Name          string   `json:"name"`
	PricePerUnit  float64  `json:"price_per_unit"`
	Unit          string   `json:"unit"`
	VendorID      uint     `json:"vendor_id"`
	VendorName    string   `json:"vendor_name"`
	MarketName    string   `json:"market_name"`
	CategoryName  string   `json:"category_name"`
	IsAvailable   bool     `json:"is_available"`
	IsOrganic     bool     `json:"is_organic"`
	MainImage     string   `json:"main_image"`
	StockQuantity *float64 `json:"stock_quantity"`
}

type ProductResponse struct {
	ID             uint     `json:"id"`
	VendorID       uint     `json:"vendor_id"`
	VendorName     string   `json:"vendor_name"`
	MarketName     string   `json:"market_name"`
	CategoryID     uint     `json:"category_id"`
	CategoryName   string   `json:"category_name"`
	Name           string   `json:"name"`
	NameJa         string   `json:"name_ja"`
	NameNe         string   `json:"name_ne"`
	Description    string   `json:"description"`
	DescriptionJa  string   `json:"description_ja"`
	DescriptionNe  string   `json:"description_ne"`
	PricePerUnit   float64  `json:"price_per_unit"`
	Unit           string   `json:"unit"`
	MinimumOrder   float64  `json:"minimum_order"`
	StockQuantity  *float64 `json:"stock_quantity"`
	IsAvailable    bool     `json:"is_available"`
	IsOrganic      bool     `json:"is_organic"`
	HarvestDate    *string  `json:"harvest_date"`
	OriginLocation string   `json:"origin_location"`
	MainImage      string   `json:"main_image"`
	Images         string   `json:"images"`
	CreatedAt      string   `json:"created_at"`
}

type productRow struct {
	models.Product
	VendorName   string
	MarketName   string
	CategoryName string
}

func toProductListItem(r *productRow) ProductListItem {
	return ProductListItem{
		ID:            r.ID,
		Name:          r.Name,
		PricePerUnit:  r.PricePerUnit,
		Unit:          r.Unit,
		VendorID:      r.VendorID,
		VendorName:    r.VendorName,
		MarketName:    r.MarketName,
		CategoryName:  r.CategoryName,
		IsAvailable:   r.IsAvailable,
		IsOrganic:     r.IsOrganic,
		MainImage:     r.MainImage,
		StockQuantity: r.StockQuantity,
	}
}

func productResponseByID(productID uint) (*ProductResponse, error) {
	var p models.Product
	if err := database.DB.
		Preload("Category").
		Preload("Vendor").
		Preload("Vendor.Market").
		First(&p, productID).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Product not found")
	}

	var harvestDate *string
	if p.HarvestDate != nil {
		formatted := p.HarvestDate.Format("2006-01-02")
		harvestDate = &formatted
	}

	return &ProductResponse{
		ID:             p.ID,
		VendorID:       p.VendorID,
		VendorName:     p.Vendor.BusinessName,
		MarketName:     p.Vendor.Market.Name,
		CategoryID:     p.CategoryID,
		CategoryName:   p.Category.Name,
		Name:           p.Name,
		NameJa:         p.NameJa,
		NameNe:         p.NameNe,
		Description:    p.Description,
		DescriptionJa:  p.DescriptionJa,
		DescriptionNe:  p.DescriptionNe,
		PricePerUnit:   p.PricePerUnit,
		Unit:           p.Unit,
		MinimumOrder:   p.MinimumOrder,
		StockQuantity:  p.StockQuantity,
		IsAvailable:    p.IsAvailable,
		IsOrganic:      p.IsOrganic,
		HarvestDate:    harvestDate,
		OriginLocation: p.OriginLocation,
		MainImage:      p.MainImage,
		Images:         p.Images,
		CreatedAt:      p.CreatedAt.Format("2006-01-02 15:04:05"),
	}, nil
}

// currentVendor resolves the vendor profile of the authenticated user.
func currentVendor(c *fiber.Ctx) (*models.Vendor, error) {
	userID, err := auth.CurrentUserID(c)
	if err != nil {
		return nil, err
	}

	var vendor models.Vendor
	if err := database.DB.Where("user_id = ?", userID).First(&vendor).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Vendor profile not found")
	}
	return &vendor, nil
}

// canManageProduct: admins always, vendors only their own products.
func canManageProduct(c *fiber.Ctx, product *models.Product) error {
	role, err := auth.CurrentUserRole(c)
	if err != nil {
		return err
	}

	switch role {
	case models.RoleAdmin:
		return nil
	case models.RoleVendor:
		vendor, err := currentVendor(c)
		if err != nil {
			return err
		}
		if product.VendorID != vendor.ID {
			return fiber.NewError(fiber.StatusForbidden, "Not authorized to manage this product")
		}
		return nil
	default:
		return fiber.NewError(fiber.StatusForbidden, "Not authorized to manage products")
	}
}

// GET /api/v1/products with the full filter surface.
func ListProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := database.DB.Model(&models.Product{}).
			Select("products.*, vendors.business_name as vendor_name, markets.name as market_name, categories.name as category_name").
			Joins("JOIN vendors ON vendors.id = products.vendor_id").
			Joins("JOIN markets ON markets.id = vendors.market_id").
			Joins("JOIN categories ON categories.id = products.category_id")

		if c.QueryBool("available_only", true) {
			query = query.Where("products.is_available = ?", true)
		}
		if vendorID := c.QueryInt("vendor_id", 0); vendorID > 0 {
			query = query.Where("products.vendor_id = ?", vendorID)
		}
		if categoryID := c.QueryInt("category_id", 0); categoryID > 0 {
			query = query.Where("products.category_id = ?", categoryID)
		}
		if marketID := c.QueryInt("market_id", 0); marketID > 0 {
			query = query.Where("vendors.market_id = ?", marketID)
		}
		if organic := c.Query("is_organic"); organic != "" {
			query = query.Where("products.is_organic = ?", organic == "true" || organic == "1")
		}
		if minPrice := c.QueryFloat("min_price", 0); minPrice > 0 {
			query = query.Where("products.price_per_unit >= ?", minPrice)
		}
		if maxPrice := c.QueryFloat("max_price", 0); maxPrice > 0 {
			query = query.Where("products.price_per_unit <= ?", maxPrice)
		}
		if search := strings.TrimSpace(c.Query("search")); search != "" {
			term := "%" + search + "%"
			query = query.Where(
				"products.name ILIKE ? OR products.description ILIKE ? OR products.name_ja ILIKE ? OR products.name_ne ILIKE ?",
				term, term, term, term,
			)
		}

		skip := c.QueryInt("skip", 0)
		limit := c.QueryInt("limit", 100)
		if limit <= 0 || limit > 500 {
			limit = 100
		}

		var rows []productRow
		if err := query.Order("products.id asc").Offset(skip).Limit(limit).Scan(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list products")
		}

		res := make([]ProductListItem, 0, len(rows))
		for i := range rows {
			res = append(res, toProductListItem(&rows[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/v1/products/:id
func GetProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid product id")
		}

		res, err := productResponseByID(uint(id))
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}

// POST /api/v1/products — vendors for themselves, admins for anyone.
func CreateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, err := auth.CurrentUserRole(c)
		if err != nil {
			return err
		}

		var body CreateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		var vendorID uint
		switch role {
		case models.RoleVendor:
			vendor, err := currentVendor(c)
			if err != nil {
				return err
			}
			vendorID = vendor.ID
		case models.RoleAdmin:
			if body.VendorID == nil || *body.VendorID == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "vendor_id is required")
			}
			var vendor models.Vendor
			if err := database.DB.First(&vendor, *body.VendorID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Vendor not found")
			}
			vendorID = vendor.ID
		default:
			return fiber.NewError(fiber.StatusForbidden, "Only vendors can create products")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" || body.Unit == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name and unit are required")
		}
		if body.PricePerUnit <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Price must be greater than 0")
		}
		if body.MinimumOrder == 0 {
			body.MinimumOrder = 1
		}
		if body.MinimumOrder <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Minimum order must be greater than 0")
		}

		var category models.Category
		if err := database.DB.First(&category, body.CategoryID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Category not found")
		}

		var harvestDate *time.Time
		if body.HarvestDate != nil && *body.HarvestDate != "" {
			parsed, err := time.Parse("2006-01-02", *body.HarvestDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "harvest_date must be YYYY-MM-DD")
			}
			harvestDate = &parsed
		}

		product := models.Product{
			VendorID:       vendorID,
			CategoryID:     body.CategoryID,
			Name:           body.Name,
			NameJa:         body.NameJa,
			NameNe:         body.NameNe,
			Description:    body.Description,
			DescriptionJa:  body.DescriptionJa,
			DescriptionNe:  body.DescriptionNe,
			PricePerUnit:   body.PricePerUnit,
			Unit:           body.Unit,
			MinimumOrder:   body.MinimumOrder,
			StockQuantity:  body.StockQuantity,
			IsAvailable:    true,
			IsOrganic:      body.IsOrganic,
			HarvestDate:    harvestDate,
			OriginLocation: body.OriginLocation,
		}

		if err := database.DB.Create(&product).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create product")
		}

		res, err := productResponseByID(product.ID)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// PUT /api/v1/products/:id
func UpdateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		productID, err := c.ParamsInt("id")
		if err != nil || productID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid product id")
		}

		var product models.Product
		if err := database.DB.First(&product, productID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Product not found")
		}

		if err := canManageProduct(c, &product); err != nil {
			return err
		}

		var body UpdateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.CategoryID != nil && *body.CategoryID != product.CategoryID {
			var category models.Category
			if err := database.DB.First(&category, *body.CategoryID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "New category not found")
			}
			product.CategoryID = *body.CategoryID
		}
		if body.Name != nil && strings.TrimSpace(*body.Name) != "" {
			product.Name = strings.TrimSpace(*body.Name)
		}
		if body.NameJa != nil {
			product.NameJa = *body.NameJa
		}
		if body.NameNe != nil {
			product.NameNe = *body.NameNe
		}
		if body.Description != nil {
			product.Description = *body.Description
		}
		if body.DescriptionJa != nil {
			product.DescriptionJa = *body.DescriptionJa
		}
		if body.DescriptionNe != nil {
			product.DescriptionNe = *body.DescriptionNe
		}
		if body.PricePerUnit != nil {
			if *body.PricePerUnit <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Price must be greater than 0")
			}
			product.PricePerUnit = *body.PricePerUnit
		}
		if body.Unit != nil && *body.Unit != "" {
			product.Unit = *body.Unit
		}
		if body.MinimumOrder != nil {
			if *body.MinimumOrder <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Minimum order must be greater than 0")
			}
			product.MinimumOrder = *body.MinimumOrder
		}
		if body.StockQuantity != nil {
			product.StockQuantity = body.StockQuantity
		}
		if body.IsAvailable != nil {
			product.IsAvailable = *body.IsAvailable
		}
		if body.IsOrganic != nil {
			product.IsOrganic = *body.IsOrganic
		}
		if body.HarvestDate != nil {
			if *body.HarvestDate == "" {
				product.HarvestDate = nil
			} else {
				parsed, err := time.Parse("2006-01-02", *body.HarvestDate)
				if err != nil {
					return fiber.NewError(fiber.StatusBadRequest, "harvest_date must be YYYY-MM-DD")
				}
				product.HarvestDate = &parsed
			}
		}
		if body.OriginLocation != nil {
			product.OriginLocation = *body.OriginLocation
		}

		if err := database.DB.Save(&product).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update product")
		}

		res, err := productResponseByID(product.ID)
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}

// DELETE /api/v1/products/:id
func DeleteProductHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		productID, err := c.ParamsInt("id")
		if err != nil || productID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid product id")
		}

		var product models.Product
		if err := database.DB.First(&product, productID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Product not found")
		}

		if err := canManageProduct(c, &product); err != nil {
			return err
		}

		if product.MainImage != "" {
			upload.DeleteImage(cfg.UploadDir, upload.KindProducts, product.MainImage)
		}

		if err := database.DB.Delete(&product).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete product")
		}

		return c.JSON(fiber.Map{"message": "Product deleted successfully"})
	}
}

// POST /api/v1/products/:id/image (multipart field "file")
func UploadProductImageHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		productID, err := c.ParamsInt("id")
		if err != nil || productID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid product id")
		}

		var product models.Product
		if err := database.DB.First(&product, productID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Product not found")
		}

		if err := canManageProduct(c, &product); err != nil {
			return err
		}

		file, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Image file is required")
		}

		filename, err := upload.SaveImage(c, file, cfg.UploadDir, upload.KindProducts)
		if err != nil {
			return err
		}

		if product.MainImage != "" {
			upload.DeleteImage(cfg.UploadDir, upload.KindProducts, product.MainImage)
		}

		product.MainImage = filename
		if err := database.DB.Save(&product).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update product")
		}

		return c.JSON(fiber.Map{"message": "Image uploaded successfully", "filename": filename})
	}
}

// GET /api/v1/vendors/:id/products
func VendorProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		vendorID, err := c.ParamsInt("id")
		if err != nil || vendorID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid vendor id")
		}

		var vendor models.Vendor
		if err := database.DB.First(&vendor, vendorID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Vendor not found")
		}

		return listVendorProducts(c, &vendor, c.QueryBool("available_only", true))
	}
}

// GET /api/v1/products/me/list
func MyProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, err := auth.CurrentUserRole(c)
		if err != nil {
			return err
		}
		if role != models.RoleVendor {
			return fiber.NewError(fiber.StatusForbidden, "Only vendors can access this endpoint")
		}

		vendor, err := currentVendor(c)
		if err != nil {
			return err
		}

		return listVendorProducts(c, vendor, false)
	}
}

func listVendorProducts(c *fiber.Ctx, vendor *models.Vendor, availableOnly bool) error {
	var market models.Market
	database.DB.First(&market, vendor.MarketID)

	query := database.DB.Model(&models.Product{}).
		Select("products.*, categories.name as category_name").
		Joins("JOIN categories ON categories.id = products.category_id").
		Where("products.vendor_id = ?", vendor.ID)
	if availableOnly {
		query = query.Where("products.is_available = ?", true)
	}

	var rows []productRow
	if err := query.Order("products.id asc").Scan(&rows).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not list products")
	}

	res := make([]ProductListItem, 0, len(rows))
	for i := range rows {
		rows[i].VendorName = vendor.BusinessName
		rows[i].MarketName = market.Name
		res = append(res, toProductListItem(&rows[i]))
	}
	return c.JSON(res)
}

// GET /api/v1/products/suggestions?q=
func ProductSuggestionsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := strings.TrimSpace(c.Query("q"))
		if q == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Query parameter q is required")
		}

		limit := c.QueryInt("limit", 10)
		if limit <= 0 || limit > 50 {
			limit = 10
		}

		term := "%" + q + "%"
		var names []string
		if err := database.DB.Model(&models.Product{}).
			Where("is_available = ?", true).
			Where("name ILIKE ? OR name_ja ILIKE ? OR name_ne ILIKE ?", term, term, term).
			Distinct().
			Limit(limit).
			Pluck("name", &names).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not fetch suggestions")
		}

		res := make([]fiber.Map, 0, len(names))
		for _, name := range names {
			res = append(res, fiber.Map{"name": name})
		}
		return c.JSON(res)
	}
}
