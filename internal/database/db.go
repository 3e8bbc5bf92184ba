package database

import (
	"log"

	"nijimarket-backend/internal/config"
	"nijimarket-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}

	err = DB.AutoMigrate(
		&models.User{},
		&models.Market{},
		&models.Vendor{},
		&models.Category{},
		&models.Product{},
		&models.Booking{},
		&models.BookingItem{},
		&models.Review{},
		&models.Notification{},
		&models.AuditLog{},
		&models.MonthlyReport{},
	)
	if err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}

	SeedCategories()

	log.Println("Database connected, migration complete.")
}

// SeedCategories inserts the initial product categories with their
// Japanese and Nepali translations. Existing names are left untouched.
func SeedCategories() {
	categories := []models.Category{
		{Name: "Vegetables", NameJa: "野菜", NameNe: "तरकारी", Description: "Fresh vegetables and greens", Icon: "🥬"},
		{Name: "Fruits", NameJa: "果物", NameNe: "फलफूल", Description: "Fresh seasonal fruits", Icon: "🍎"},
		{Name: "Herbs & Spices", NameJa: "ハーブ・スパイス", NameNe: "जडिबुटी र मसला", Description: "Fresh herbs and dried spices", Icon: "🌿"},
		{Name: "Grains & Cereals", NameJa: "穀物", NameNe: "अनाज", Description: "Rice, wheat, and other grains", Icon: "🌾"},
		{Name: "Dairy Products", NameJa: "乳製品", NameNe: "दूध उत्पादन", Description: "Fresh milk, cheese, and dairy", Icon: "🥛"},
		{Name: "Meat & Poultry", NameJa: "肉類", NameNe: "मासु", Description: "Fresh meat and poultry products", Icon: "🥩"},
	}

	for _, cat := range categories {
		var count int64
		DB.Model(&models.Category{}).Where("name = ?", cat.Name).Count(&count)
		if count > 0 {
			continue
		}
		if err := DB.Create(&cat).Error; err != nil {
			log.Printf("Could not seed category %q: %v", cat.Name, err)
		}
	}
}
