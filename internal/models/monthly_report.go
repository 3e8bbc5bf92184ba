package models

import "time"

// MonthlyReport is a persisted snapshot of platform activity for one
// calendar month, generated on demand by an admin.
type MonthlyReport struct {
	ID    uint `gorm:"primaryKey"`
	Year  int  `gorm:"not null;index:idx_monthly_reports_period,unique"`
	Month int  `gorm:"not null;index:idx_monthly_reports_period,unique"`

	TotalBookings     int     `gorm:"not null"`
	CompletedBookings int     `gorm:"not null"`
	CancelledBookings int     `gorm:"not null"`
	GrossAmount       float64 `gorm:"not null"` // sum over non-cancelled bookings
	NewUsers          int     `gorm:"not null"`
	NewVendors        int     `gorm:"not null"`

	// Per-market rows (JSON), kept alongside the totals so the xlsx
	// export does not have to re-run the aggregation.
	MarketBreakdown string `gorm:"type:jsonb"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
