package models

import "time"

type NotificationType string

const (
	NotificationBookingCreated NotificationType = "booking_created"
	NotificationBookingStatus  NotificationType = "booking_status"
	NotificationVendorVerified NotificationType = "vendor_verified"
	NotificationReviewReceived NotificationType = "review_received"
)

// Notification backs the in-app feed; the push gateway consumes the
// same events from the broker topic.
type Notification struct {
	ID     uint `gorm:"primaryKey"`
	UserID uint `gorm:"index;not null"`

	Type  NotificationType `gorm:"size:30;not null"`
	Title string           `gorm:"size:150;not null"`
	Body  string           `gorm:"size:500"`
	Data  string           `gorm:"type:jsonb"` // entity reference payload

	IsRead bool `gorm:"not null;default:false"`

	CreatedAt time.Time
}
