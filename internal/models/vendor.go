package models

import "time"

type Vendor struct {
	ID       uint `gorm:"primaryKey"`
	UserID   uint `gorm:"uniqueIndex;not null"`
	User     User
	MarketID uint `gorm:"index;not null"`
	Market   Market

	BusinessName        string `gorm:"size:150;not null"`
	BusinessDescription string `gorm:"type:text"`
	Specialties         string `gorm:"size:255"` // JSON array

	IsVerified            bool   `gorm:"not null;default:false"`
	VerificationDocuments string `gorm:"type:text"` // JSON array of document URLs

	BusinessPhone string `gorm:"size:30"`
	Website       string `gorm:"size:255"`
	SocialMedia   string `gorm:"size:255"` // JSON object with social links

	AvailableDays string `gorm:"size:255"` // JSON array
	AvailableFrom string `gorm:"size:10"`  // "08:00"
	AvailableTo   string `gorm:"size:10"`  // "16:00"

	AverageRating float64 `gorm:"not null;default:0"`
	TotalReviews  int     `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Products []Product
}
