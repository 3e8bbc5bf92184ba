package models

import "time"

type BookingStatus string

const (
	BookingPending        BookingStatus = "pending"
	BookingConfirmed      BookingStatus = "confirmed"
	BookingReadyForPickup BookingStatus = "ready_for_pickup"
	BookingCompleted      BookingStatus = "completed"
	BookingCancelled      BookingStatus = "cancelled"
)

// bookingTransitions: which status changes a booking may go through.
// Cancellation is only possible before the produce is set aside for pickup.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:        {BookingConfirmed, BookingCancelled},
	BookingConfirmed:      {BookingReadyForPickup, BookingCancelled},
	BookingReadyForPickup: {BookingCompleted},
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingReadyForPickup, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

func (s BookingStatus) CanTransition(to BookingStatus) bool {
	for _, next := range bookingTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no further status change is possible.
func (s BookingStatus) Terminal() bool {
	return len(bookingTransitions[s]) == 0
}

type Booking struct {
	ID         uint `gorm:"primaryKey"`
	ConsumerID uint `gorm:"index;not null"`
	Consumer   User `gorm:"foreignKey:ConsumerID"`
	VendorID   uint `gorm:"index;not null"`
	Vendor     Vendor
	MarketID   uint `gorm:"index;not null"`
	Market     Market

	BookingNumber string        `gorm:"size:30;uniqueIndex;not null"`
	Status        BookingStatus `gorm:"size:20;not null;default:pending"`

	PreferredPickupDate time.Time `gorm:"not null"`
	PreferredPickupTime string    `gorm:"size:20"` // "10:00-11:00"
	ActualPickupTime    *time.Time

	TotalAmount float64 `gorm:"not null"`

	ConsumerNotes string `gorm:"type:text"`
	VendorNotes   string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Items []BookingItem
}

type BookingItem struct {
	ID        uint `gorm:"primaryKey"`
	BookingID uint `gorm:"index;not null"`
	ProductID uint `gorm:"index;not null"`
	Product   Product

	Quantity   float64 `gorm:"not null"`
	UnitPrice  float64 `gorm:"not null"`
	TotalPrice float64 `gorm:"not null"`
}
