package main

import (
	"log"
	"os"

	"nijimarket-backend/internal/config"
	"nijimarket-backend/internal/database"
	"nijimarket-backend/internal/models"

	"golang.org/x/crypto/bcrypt"
)

// Seeds the default product categories and, when ADMIN_EMAIL and
// ADMIN_PASSWORD are set, a platform admin account.
func main() {
	cfg := config.Load()
	database.Init(cfg) // migrates and seeds the default categories

	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Println("ADMIN_EMAIL/ADMIN_PASSWORD not set, skipping admin account")
		return
	}
	if len(password) < 8 {
		log.Fatal("ADMIN_PASSWORD must be at least 8 characters")
	}

	var count int64
	database.DB.Model(&models.User{}).Where("email = ?", email).Count(&count)
	if count > 0 {
		log.Println("Admin account already exists:", email)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Could not hash admin password:", err)
	}

	admin := models.User{
		Email:        email,
		PasswordHash: string(hash),
		FullName:     "Platform Admin",
		Role:         models.RoleAdmin,
		IsActive:     true,
		IsVerified:   true,
	}
	if err := database.DB.Create(&admin).Error; err != nil {
		log.Fatal("Could not create admin account:", err)
	}

	log.Println("Created admin account:", email)
}
