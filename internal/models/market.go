package models

import "time"

type Market struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:100;not null;index"`
	Description string `gorm:"type:text"`

	Address    string `gorm:"size:255;not null"`
	City       string `gorm:"size:100;not null"`
	Prefecture string `gorm:"size:100;not null"`
	Country    string `gorm:"size:100;default:Japan"`
	PostalCode string `gorm:"size:20"`
	Latitude   *float64
	Longitude  *float64

	MarketType string `gorm:"size:50"` // farmers, organic, traditional
	IsActive   bool   `gorm:"not null;default:true"`

	OperatingDays string `gorm:"size:255"` // JSON array: ["monday","saturday"]
	OpeningTime   string `gorm:"size:10"`  // "08:00"
	ClosingTime   string `gorm:"size:10"`  // "16:00"

	MainImage string `gorm:"size:255"`
	Images    string `gorm:"type:text"` // JSON array of image URLs

	CreatedAt time.Time
	UpdatedAt time.Time

	Vendors []Vendor
}
