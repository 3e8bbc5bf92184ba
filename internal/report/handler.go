package report

import (
	"encoding/json"
	"fmt"
	"time"

	"nijimarket-backend/internal/database"
	"nijimarket-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

// MarketRow is one market's slice of a monthly report.
type MarketRow struct {
	MarketID   uint    `json:"market_id"`
	MarketName string  `json:"market_name"`
	Bookings   int     `json:"bookings"`
	Completed  int     `json:"completed"`
	Cancelled  int     `json:"cancelled"`
	Gross      float64 `json:"gross"`
}

type ReportResponse struct {
	ID                uint        `json:"id"`
	Year              int         `json:"year"`
	Month             int         `json:"month"`
	TotalBookings     int         `json:"total_bookings"`
	CompletedBookings int         `json:"completed_bookings"`
	CancelledBookings int         `json:"cancelled_bookings"`
	GrossAmount       float64     `json:"gross_amount"`
	NewUsers          int         `json:"new_users"`
	NewVendors        int         `json:"new_vendors"`
	MarketBreakdown   []MarketRow `json:"market_breakdown"`
	GeneratedAt       string      `json:"generated_at"`
}

func toReportResponse(r *models.MonthlyReport) ReportResponse {
	var rows []MarketRow
	if r.MarketBreakdown != "" {
		_ = json.Unmarshal([]byte(r.MarketBreakdown), &rows)
	}
	return ReportResponse{
		ID:                r.ID,
		Year:              r.Year,
		Month:             r.Month,
		TotalBookings:     r.TotalBookings,
		CompletedBookings: r.CompletedBookings,
		CancelledBookings: r.CancelledBookings,
		GrossAmount:       r.GrossAmount,
		NewUsers:          r.NewUsers,
		NewVendors:        r.NewVendors,
		MarketBreakdown:   rows,
		GeneratedAt:       r.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

// MonthRange returns the half-open interval [start, end) covering one
// calendar month.
func MonthRange(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

func validPeriod(year, month int) bool {
	return year >= 2000 && year <= 2200 && month >= 1 && month <= 12
}

// generateReport aggregates one month of platform activity and upserts
// the snapshot row for that period.
func generateReport(year, month int) (*models.MonthlyReport, error) {
	start, end := MonthRange(year, month)

	type bookingAgg struct {
		Total     int
		Completed int
		Cancelled int
		Gross     float64
	}
	var totals bookingAgg
	if err := database.DB.Model(&models.Booking{}).
		Select(`COUNT(*) as total,
			COUNT(*) FILTER (WHERE status = 'completed') as completed,
			COUNT(*) FILTER (WHERE status = 'cancelled') as cancelled,
			COALESCE(SUM(total_amount) FILTER (WHERE status <> 'cancelled'), 0) as gross`).
		Where("created_at >= ? AND created_at < ?", start, end).
		Scan(&totals).Error; err != nil {
		return nil, err
	}

	var marketRows []MarketRow
	if err := database.DB.Model(&models.Booking{}).
		Select(`bookings.market_id as market_id,
			markets.name as market_name,
			COUNT(*) as bookings,
			COUNT(*) FILTER (WHERE bookings.status = 'completed') as completed,
			COUNT(*) FILTER (WHERE bookings.status = 'cancelled') as cancelled,
			COALESCE(SUM(bookings.total_amount) FILTER (WHERE bookings.status <> 'cancelled'), 0) as gross`).
		Joins("LEFT JOIN markets ON markets.id = bookings.market_id").
		Where("bookings.created_at >= ? AND bookings.created_at < ?", start, end).
		Group("bookings.market_id, markets.name").
		Order("gross desc").
		Scan(&marketRows).Error; err != nil {
		return nil, err
	}

	var newUsers, newVendors int64
	if err := database.DB.Model(&models.User{}).
		Where("created_at >= ? AND created_at < ?", start, end).
		Count(&newUsers).Error; err != nil {
		return nil, err
	}
	if err := database.DB.Model(&models.Vendor{}).
		Where("created_at >= ? AND created_at < ?", start, end).
		Count(&newVendors).Error; err != nil {
		return nil, err
	}

	breakdown, err := json.Marshal(marketRows)
	if err != nil {
		return nil, err
	}

	var existing models.MonthlyReport
	err = database.DB.Where("year = ? AND month = ?", year, month).First(&existing).Error
	if err == nil {
		existing.TotalBookings = totals.Total
		existing.CompletedBookings = totals.Completed
		existing.CancelledBookings = totals.Cancelled
		existing.GrossAmount = totals.Gross
		existing.NewUsers = int(newUsers)
		existing.NewVendors = int(newVendors)
		existing.MarketBreakdown = string(breakdown)
		if err := database.DB.Save(&existing).Error; err != nil {
			return nil, err
		}
		return &existing, nil
	}

	fresh := models.MonthlyReport{
		Year:              year,
		Month:             month,
		TotalBookings:     totals.Total,
		CompletedBookings: totals.Completed,
		CancelledBookings: totals.Cancelled,
		GrossAmount:       totals.Gross,
		NewUsers:          int(newUsers),
		NewVendors:        int(newVendors),
		MarketBreakdown:   string(breakdown),
	}
	if err := database.DB.Create(&fresh).Error; err != nil {
		return nil, err
	}
	return &fresh, nil
}

type GenerateReportRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// POST /api/v1/admin/reports/monthly
func GenerateReportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body GenerateReportRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if !validPeriod(body.Year, body.Month) {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid year or month")
		}

		report, err := generateReport(body.Year, body.Month)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not generate report")
		}

		return c.JSON(toReportResponse(report))
	}
}

// GET /api/v1/admin/reports/monthly
func ListReportsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var reports []models.MonthlyReport
		if err := database.DB.Order("year desc, month desc").Limit(60).Find(&reports).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list reports")
		}

		res := make([]ReportResponse, 0, len(reports))
		for i := range reports {
			res = append(res, toReportResponse(&reports[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/v1/admin/reports/monthly/:year/:month/export — xlsx download.
// Regenerates the snapshot first so the file reflects current data.
func ExportReportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		year, _ := c.ParamsInt("year")
		month, _ := c.ParamsInt("month")
		if !validPeriod(year, month) {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid year or month")
		}

		report, err := generateReport(year, month)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not generate report")
		}

		var rows []MarketRow
		_ = json.Unmarshal([]byte(report.MarketBreakdown), &rows)

		f := excelize.NewFile()
		defer f.Close()

		sheet := "Summary"
		f.SetSheetName("Sheet1", sheet)

		period := fmt.Sprintf("%04d-%02d", year, month)
		f.SetCellValue(sheet, "A1", "NijiMarket Monthly Report")
		f.SetCellValue(sheet, "B1", period)

		summary := [][]interface{}{
			{"Total bookings", report.TotalBookings},
			{"Completed bookings", report.CompletedBookings},
			{"Cancelled bookings", report.CancelledBookings},
			{"Gross amount", report.GrossAmount},
			{"New users", report.NewUsers},
			{"New vendors", report.NewVendors},
		}
		for i, row := range summary {
			f.SetCellValue(sheet, fmt.Sprintf("A%d", i+3), row[0])
			f.SetCellValue(sheet, fmt.Sprintf("B%d", i+3), row[1])
		}

		marketSheet := "Markets"
		if _, err := f.NewSheet(marketSheet); err == nil {
			headers := []string{"Market", "Bookings", "Completed", "Cancelled", "Gross"}
			for i, h := range headers {
				cell, _ := excelize.CoordinatesToCellName(i+1, 1)
				f.SetCellValue(marketSheet, cell, h)
			}
			for i, row := range rows {
				values := []interface{}{row.MarketName, row.Bookings, row.Completed, row.Cancelled, row.Gross}
				for j, v := range values {
					cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
					f.SetCellValue(marketSheet, cell, v)
				}
			}
		}

		buf, err := f.WriteToBuffer()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not build xlsx file")
		}

		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="nijimarket-report-%s.xlsx"`, period))
		return c.Send(buf.Bytes())
	}
}
