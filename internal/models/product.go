package models

import "time"

type Category struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:100;not null;unique"`
	NameJa      string `gorm:"size:100"` // Japanese translation
	NameNe      string `gorm:"size:100"` // Nepali translation
	Description string `gorm:"type:text"`
	Icon        string `gorm:"size:100"`
	IsActive    bool   `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Products []Product
}

type Product struct {
	ID         uint `gorm:"primaryKey"`
	VendorID   uint `gorm:"index;not null"`
	Vendor     Vendor
	CategoryID uint `gorm:"index;not null"`
	Category   Category

	Name          string `gorm:"size:150;not null;index"`
	NameJa        string `gorm:"size:150"`
	NameNe        string `gorm:"size:150"`
	Description   string `gorm:"type:text"`
	DescriptionJa string `gorm:"type:text"`
	DescriptionNe string `gorm:"type:text"`

	PricePerUnit  float64 `gorm:"not null"`
	Unit          string  `gorm:"size:20;not null"` // kg, piece, bunch
	MinimumOrder  float64 `gorm:"not null;default:1"`
	StockQuantity *float64
	IsAvailable   bool `gorm:"not null;default:true"`

	IsOrganic      bool `gorm:"not null;default:false"`
	HarvestDate    *time.Time
	OriginLocation string `gorm:"size:150"`

	MainImage string `gorm:"size:255"`
	Images    string `gorm:"type:text"` // JSON array of image URLs

	CreatedAt time.Time
	UpdatedAt time.Time
}
