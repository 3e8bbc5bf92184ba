package models

import "time"

type Review struct {
	ID         uint `gorm:"primaryKey"`
	ConsumerID uint `gorm:"index;not null"`
	Consumer   User `gorm:"foreignKey:ConsumerID"`
	VendorID   uint `gorm:"index;not null"`
	Vendor     Vendor
	BookingID  uint `gorm:"uniqueIndex;not null"` // one review per booking
	Booking    Booking

	Rating  int    `gorm:"not null"` // 1-5
	Comment string `gorm:"type:text"`

	QualityRating *int
	ServiceRating *int
	ValueRating   *int

	IsVerified bool `gorm:"not null;default:false"` // purchase-backed
	IsApproved bool `gorm:"not null;default:true"`  // admin moderation

	CreatedAt time.Time
	UpdatedAt time.Time
}
