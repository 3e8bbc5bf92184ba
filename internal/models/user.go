package models

import "time"

type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleVendor   UserRole = "vendor"
	RoleConsumer UserRole = "consumer"
)

type User struct {
	ID           uint     `gorm:"primaryKey"`
	Email        string   `gorm:"size:100;uniqueIndex;not null"`
	Phone        *string  `gorm:"size:30;uniqueIndex"`
	PasswordHash string   `gorm:"size:255;not null"`
	FullName     string   `gorm:"size:100;not null"`
	Role         UserRole `gorm:"size:20;not null;default:consumer"`
	IsActive     bool     `gorm:"not null;default:true"`
	IsVerified   bool     `gorm:"not null;default:false"`
	ProfileImage string   `gorm:"size:255"`

	Address    string `gorm:"size:255"`
	City       string `gorm:"size:100"`
	Prefecture string `gorm:"size:100"`
	Country    string `gorm:"size:100;default:Japan"`
	PostalCode string `gorm:"size:20"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
