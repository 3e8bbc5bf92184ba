package main

import (
	"log"
	"strings"

	"nijimarket-backend/internal/audit"
	"nijimarket-backend/internal/auth"
	"nijimarket-backend/internal/booking"
	"nijimarket-backend/internal/catalog"
	"nijimarket-backend/internal/config"
	"nijimarket-backend/internal/database"
	"nijimarket-backend/internal/market"
	"nijimarket-backend/internal/models"
	"nijimarket-backend/internal/notify"
	"nijimarket-backend/internal/report"
	"nijimarket-backend/internal/review"
	"nijimarket-backend/internal/upload"
	"nijimarket-backend/internal/vendor"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	if err := upload.Init(cfg.UploadDir); err != nil {
		log.Fatal("Could not prepare upload directory:", err)
	}

	publisher := notify.NewPublisher(cfg.KafkaBrokers, cfg.NotificationTopic)
	defer publisher.Close()
	hub := notify.NewHub()
	notifier := notify.NewNotifier(publisher, hub)

	app := fiber.New(fiber.Config{
		BodyLimit: upload.MaxFileSize + 1024*1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Unexpected server error",
			})
		},
	})

	// CORS origins arrive as a comma separated string
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Static("/uploads", cfg.UploadDir)

	api := app.Group("/api/v1")

	// Public auth
	api.Post("/auth/register", auth.RegisterHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))
	api.Post("/auth/refresh", auth.RefreshHandler(cfg))

	// Public browse surface
	api.Get("/markets", market.ListMarketsHandler())
	api.Get("/markets/suggestions", market.SuggestionsHandler())
	api.Get("/markets/:id", market.GetMarketHandler())
	api.Get("/markets/:id/vendors", vendor.MarketVendorsHandler())

	api.Get("/vendors", vendor.ListVendorsHandler())
	api.Get("/vendors/:id", vendor.GetVendorHandler())
	api.Get("/vendors/:id/products", catalog.VendorProductsHandler())
	api.Get("/vendors/:id/reviews", review.VendorReviewsHandler())

	api.Get("/categories", catalog.ListCategoriesHandler())
	api.Get("/categories/:id", catalog.GetCategoryHandler())

	api.Get("/products", catalog.ListProductsHandler())
	api.Get("/products/suggestions", catalog.ProductSuggestionsHandler())
	api.Get("/products/:id", catalog.GetProductHandler())

	// Live notification stream; the token travels as a query parameter
	// because browsers cannot set headers on a websocket handshake.
	app.Use("/ws/notifications", notify.UpgradeMiddleware(cfg))
	app.Get("/ws/notifications", notify.WebsocketHandler(hub))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())
	protected.Put("/auth/me", auth.UpdateProfileHandler())
	protected.Post("/auth/change-password", auth.ChangePasswordHandler())
	protected.Post("/auth/me/image", auth.UploadProfileImageHandler(cfg))
	protected.Post("/auth/logout", auth.LogoutHandler())

	// Vendor self-service
	protected.Post("/vendors", vendor.CreateVendorHandler())
	protected.Put("/vendors/:id", vendor.UpdateVendorHandler())
	protected.Get("/vendors/me/profile", vendor.MyVendorProfileHandler())

	protected.Post("/products", catalog.CreateProductHandler())
	protected.Put("/products/:id", catalog.UpdateProductHandler())
	protected.Delete("/products/:id", catalog.DeleteProductHandler(cfg))
	protected.Post("/products/:id/image", catalog.UploadProductImageHandler(cfg))
	protected.Get("/products/me/list", catalog.MyProductsHandler())

	// Bookings
	protected.Post("/bookings", booking.CreateBookingHandler(notifier))
	protected.Get("/bookings/my", booking.MyBookingsHandler())
	protected.Get("/bookings/vendor", booking.VendorBookingsHandler())
	protected.Get("/bookings/:id", booking.GetBookingHandler())
	protected.Patch("/bookings/:id/status", booking.UpdateStatusHandler(notifier))

	// Reviews
	protected.Post("/reviews", review.CreateReviewHandler(notifier))
	protected.Delete("/reviews/:id", review.DeleteReviewHandler())

	// In-app notification feed
	protected.Get("/notifications", notify.ListNotificationsHandler())
	protected.Get("/notifications/unread-count", notify.UnreadCountHandler())
	protected.Post("/notifications/:id/read", notify.MarkReadHandler())
	protected.Post("/notifications/read-all", notify.MarkAllReadHandler())

	// Admin
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleAdmin))

	adminRoutes.Get("/users", auth.ListUsersHandler())
	adminRoutes.Post("/users/:id/toggle-active", auth.ToggleUserActiveHandler())

	adminRoutes.Post("/markets", market.CreateMarketHandler())
	adminRoutes.Put("/markets/:id", market.UpdateMarketHandler())
	adminRoutes.Delete("/markets/:id", market.DeleteMarketHandler())
	adminRoutes.Post("/markets/:id/image", market.UploadMarketImageHandler(cfg))

	adminRoutes.Post("/vendors/:id/verify", vendor.VerifyVendorHandler(notifier))
	adminRoutes.Post("/vendors/:id/unverify", vendor.UnverifyVendorHandler(notifier))

	adminRoutes.Post("/categories", catalog.CreateCategoryHandler())
	adminRoutes.Put("/categories/:id", catalog.UpdateCategoryHandler())
	adminRoutes.Delete("/categories/:id", catalog.DeleteCategoryHandler())

	adminRoutes.Get("/bookings", booking.ListAllBookingsHandler())

	adminRoutes.Get("/reviews", review.ModerationQueueHandler())
	adminRoutes.Post("/reviews/:id/approve", review.ApproveReviewHandler())
	adminRoutes.Post("/reviews/:id/reject", review.RejectReviewHandler())

	adminRoutes.Post("/reports/monthly", report.GenerateReportHandler())
	adminRoutes.Get("/reports/monthly", report.ListReportsHandler())
	adminRoutes.Get("/reports/monthly/:year/:month/export", report.ExportReportHandler())

	adminRoutes.Get("/audit-logs", audit.ListAuditLogsHandler())
	adminRoutes.Post("/audit-logs/:id/undo", audit.UndoAuditLogHandler())

	log.Println("Server listening on port", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
