package booking

import (
	"errors"
	"fmt"
	"time"

	"nijimarket-backend/internal/auth"
	"nijimarket-backend/internal/database"
	"nijimarket-backend/internal/models"
	"nijimarket-backend/internal/notify"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CreateBookingItem struct {
	ProductID uint    `json:"product_id"`
	Quantity  float64 `json:"quantity"`
}

type CreateBookingRequest struct {
	VendorID            uint                `json:"vendor_id"`
	PreferredPickupDate string              `json:"preferred_pickup_date"` // "2025-09-01"
	PreferredPickupTime string              `json:"preferred_pickup_time"` // "10:00-11:00"
	ConsumerNotes       string              `json:"consumer_notes"`
	Items               []CreateBookingItem `json:"items"`
}

type UpdateStatusRequest struct {
	Status      models.BookingStatus `json:"status"`
	VendorNotes *string              `json:"vendor_notes"`
}

type BookingItemResponse struct {
	ID          uint    `json:"id"`
	ProductID   uint    `json:"product_id"`
	ProductName string  `json:"product_name"`
	Unit        string  `json:"unit"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	TotalPrice  float64 `json:"total_price"`
}

type BookingResponse struct {
	ID                  uint                  `json:"id"`
	BookingNumber       string                `json:"booking_number"`
	Status              models.BookingStatus  `json:"status"`
	ConsumerID          uint                  `json:"consumer_id"`
	ConsumerName        string                `json:"consumer_name"`
	VendorID            uint                  `json:"vendor_id"`
	VendorName          string                `json:"vendor_name"`
	MarketID            uint                  `json:"market_id"`
	MarketName          string                `json:"market_name"`
	PreferredPickupDate string                `json:"preferred_pickup_date"`
	PreferredPickupTime string                `json:"preferred_pickup_time"`
	ActualPickupTime    *string               `json:"actual_pickup_time"`
	TotalAmount         float64               `json:"total_amount"`
	ConsumerNotes       string                `json:"consumer_notes"`
	VendorNotes         string                `json:"vendor_notes"`
	Items               []BookingItemResponse `json:"items"`
	CreatedAt           string                `json:"created_at"`
}

func toBookingResponse(b *models.Booking) BookingResponse {
	var actualPickup *string
	if b.ActualPickupTime != nil {
		formatted := b.ActualPickupTime.Format("2006-01-02 15:04:05")
		actualPickup = &formatted
	}

	items := make([]BookingItemResponse, 0, len(b.Items))
	for _, item := range b.Items {
		items = append(items, BookingItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.Product.Name,
			Unit:        item.Product.Unit,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice,
		})
	}

	return BookingResponse{
		ID:                  b.ID,
		BookingNumber:       b.BookingNumber,
		Status:              b.Status,
		ConsumerID:          b.ConsumerID,
		ConsumerName:        b.Consumer.FullName,
		VendorID:            b.VendorID,
		VendorName:          b.Vendor.BusinessName,
		MarketID:            b.MarketID,
		MarketName:          b.Market.Name,
		PreferredPickupDate: b.PreferredPickupDate.Format("2006-01-02"),
		PreferredPickupTime: b.PreferredPickupTime,
		ActualPickupTime:    actualPickup,
		TotalAmount:         b.TotalAmount,
		ConsumerNotes:       b.ConsumerNotes,
		VendorNotes:         b.VendorNotes,
		Items:               items,
		CreatedAt:           b.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// dbError maps a missing row to 404 and everything else to 500.
func dbError(err error, notFound string) *fiber.Error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fiber.NewError(fiber.StatusNotFound, notFound)
	}
	return fiber.NewError(fiber.StatusInternalServerError, "Database error")
}

func loadBooking(bookingID uint) (*models.Booking, error) {
	var b models.Booking
	if err := database.DB.
		Preload("Consumer").
		Preload("Vendor").
		Preload("Market").
		Preload("Items").
		Preload("Items.Product").
		First(&b, bookingID).Error; err != nil {
		return nil, dbError(err, "Booking not found")
	}
	return &b, nil
}

// POST /api/v1/bookings (consumer). Stock is reserved inside one
// transaction; a conditional decrement keeps concurrent bookings from
// overselling.
func CreateBookingHandler(notifier *notify.Notifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, err := auth.CurrentUserRole(c)
		if err != nil {
			return err
		}
		if role != models.RoleConsumer {
			return fiber.NewError(fiber.StatusForbidden, "Only consumers can create bookings")
		}

		consumerID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var body CreateBookingRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if len(body.Items) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Booking needs at least one item")
		}

		pickupDate, err := time.Parse("2006-01-02", body.PreferredPickupDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "preferred_pickup_date must be YYYY-MM-DD")
		}

		var vendor models.Vendor
		if err := database.DB.First(&vendor, body.VendorID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Vendor not found")
		}

		booking := models.Booking{
			ConsumerID:          consumerID,
			VendorID:            vendor.ID,
			MarketID:            vendor.MarketID,
			BookingNumber:       NewBookingNumber(time.Now()),
			Status:              models.BookingPending,
			PreferredPickupDate: pickupDate,
			PreferredPickupTime: body.PreferredPickupTime,
			ConsumerNotes:       body.ConsumerNotes,
		}

		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			var total float64
			items := make([]models.BookingItem, 0, len(body.Items))

			for _, reqItem := range body.Items {
				if reqItem.Quantity <= 0 {
					return fiber.NewError(fiber.StatusBadRequest, "Item quantity must be greater than 0")
				}

				var product models.Product
				if err := tx.First(&product, reqItem.ProductID).Error; err != nil {
					return fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("Product %d not found", reqItem.ProductID))
				}
				if product.VendorID != vendor.ID {
					return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Product %q does not belong to this vendor", product.Name))
				}
				if !product.IsAvailable {
					return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Product %q is not available", product.Name))
				}
				if reqItem.Quantity < product.MinimumOrder {
					return fiber.NewError(fiber.StatusBadRequest,
						fmt.Sprintf("Minimum order for %q is %g %s", product.Name, product.MinimumOrder, product.Unit))
				}

				// Conditional decrement: only succeeds while enough
				// stock remains. Untracked stock (NULL) always passes.
				result := tx.Model(&models.Product{}).
					Where("id = ? AND (stock_quantity IS NULL OR stock_quantity >= ?)", product.ID, reqItem.Quantity).
					Update("stock_quantity", gorm.Expr("CASE WHEN stock_quantity IS NULL THEN NULL ELSE stock_quantity - ? END", reqItem.Quantity))
				if result.Error != nil {
					return fiber.NewError(fiber.StatusInternalServerError, "Could not reserve stock")
				}
				if result.RowsAffected == 0 {
					return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Not enough stock for %q", product.Name))
				}

				itemTotal := product.PricePerUnit * reqItem.Quantity
				total += itemTotal
				items = append(items, models.BookingItem{
					ProductID:  product.ID,
					Quantity:   reqItem.Quantity,
					UnitPrice:  product.PricePerUnit,
					TotalPrice: itemTotal,
				})
			}

			booking.TotalAmount = total
			booking.Items = items

			if err := tx.Create(&booking).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Could not create booking")
			}
			return nil
		})
		if txErr != nil {
			if fe, ok := txErr.(*fiber.Error); ok {
				return fe
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create booking")
		}

		event := notify.NewEvent("booking", "created", booking.BookingNumber).
			WithData(fiber.Map{"booking_id": booking.ID, "booking_number": booking.BookingNumber, "total_amount": booking.TotalAmount})
		notifier.Send(c.Context(), vendor.UserID, models.NotificationBookingCreated,
			"New booking "+booking.BookingNumber,
			fmt.Sprintf("A consumer reserved produce for pickup on %s.", booking.PreferredPickupDate.Format("2006-01-02")),
			event)

		full, err := loadBooking(booking.ID)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(toBookingResponse(full))
	}
}

// statusChangeAllowed: who may move a booking into the target status.
func statusChangeAllowed(role models.UserRole, userID uint, b *models.Booking, target models.BookingStatus) bool {
	if role == models.RoleAdmin {
		return true
	}
	isVendor := role == models.RoleVendor && b.Vendor.UserID == userID
	isConsumer := role == models.RoleConsumer && b.ConsumerID == userID

	switch target {
	case models.BookingConfirmed, models.BookingReadyForPickup, models.BookingCompleted:
		return isVendor
	case models.BookingCancelled:
		return isVendor || isConsumer
	}
	return false
}

// statusUpdateColumns builds the column set a status change writes.
func statusUpdateColumns(status models.BookingStatus, vendorNotes *string, canNote bool, now time.Time) map[string]interface{} {
	updates := map[string]interface{}{"status": status}
	if status == models.BookingCompleted {
		updates["actual_pickup_time"] = &now
	}
	if vendorNotes != nil && canNote {
		updates["vendor_notes"] = *vendorNotes
	}
	return updates
}

// statusChangeBody is the notification text shown to the consumer.
func statusChangeBody(role models.UserRole, status models.BookingStatus) string {
	switch status {
	case models.BookingConfirmed:
		return "The vendor confirmed your booking."
	case models.BookingReadyForPickup:
		return "Your produce is ready for pickup."
	case models.BookingCompleted:
		return "Your booking was completed. Enjoy!"
	case models.BookingCancelled:
		if role == models.RoleAdmin {
			return "This booking was cancelled."
		}
		return "The vendor cancelled this booking."
	}
	return ""
}

// PATCH /api/v1/bookings/:id/status
func UpdateStatusHandler(notifier *notify.Notifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid booking id")
		}
		bookingID := uint(id)

		var body UpdateStatusRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if !body.Status.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid status")
		}

		b, err := loadBooking(bookingID)
		if err != nil {
			return err
		}

		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}
		role, err := auth.CurrentUserRole(c)
		if err != nil {
			return err
		}

		if !statusChangeAllowed(role, userID, b, body.Status) {
			return fiber.NewError(fiber.StatusForbidden, "Not authorized to change this booking")
		}
		if !b.Status.CanTransition(body.Status) {
			return fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("Cannot move booking from %s to %s", b.Status, body.Status))
		}

		canNote := role == models.RoleVendor || role == models.RoleAdmin
		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			// Conditional write: a concurrent request that already moved
			// the booking off the status this one validated loses here,
			// so stock can never be restored twice.
			result := tx.Model(&models.Booking{}).
				Where("id = ? AND status = ?", b.ID, b.Status).
				Updates(statusUpdateColumns(body.Status, body.VendorNotes, canNote, time.Now()))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return fiber.NewError(fiber.StatusConflict, "Booking status changed, reload and try again")
			}

			if body.Status == models.BookingCancelled {
				// Return the reserved quantities to stock.
				for _, item := range b.Items {
					if err := tx.Model(&models.Product{}).
						Where("id = ? AND stock_quantity IS NOT NULL", item.ProductID).
						Update("stock_quantity", gorm.Expr("stock_quantity + ?", item.Quantity)).Error; err != nil {
						return err
					}
				}
			}
			return nil
		})
		if txErr != nil {
			if fe, ok := txErr.(*fiber.Error); ok {
				return fe
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update booking")
		}

		// Tell the other side what happened.
		event := notify.NewEvent("booking", string(body.Status), b.BookingNumber).
			WithData(fiber.Map{"booking_id": b.ID, "booking_number": b.BookingNumber, "status": body.Status})
		title := fmt.Sprintf("Booking %s is now %s", b.BookingNumber, body.Status)
		if role == models.RoleConsumer {
			notifier.Send(c.Context(), b.Vendor.UserID, models.NotificationBookingStatus, title,
				"The consumer cancelled this booking.", event)
		} else {
			notifier.Send(c.Context(), b.ConsumerID, models.NotificationBookingStatus, title,
				statusChangeBody(role, body.Status), event)
		}

		full, err := loadBooking(b.ID)
		if err != nil {
			return err
		}
		return c.JSON(toBookingResponse(full))
	}
}

// GET /api/v1/bookings/my (consumer)
func MyBookingsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		consumerID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}
		return listBookings(c, database.DB.Where("consumer_id = ?", consumerID))
	}
}

// GET /api/v1/bookings/vendor (vendor) ?status=
func VendorBookingsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var vendor models.Vendor
		if err := database.DB.Where("user_id = ?", userID).First(&vendor).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Vendor profile not found")
		}

		return listBookings(c, database.DB.Where("vendor_id = ?", vendor.ID))
	}
}

// GET /api/v1/admin/bookings (admin)
func ListAllBookingsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return listBookings(c, database.DB)
	}
}

func listBookings(c *fiber.Ctx, query *gorm.DB) error {
	if status := c.Query("status"); status != "" {
		if !models.BookingStatus(status).Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid status filter")
		}
		query = query.Where("status = ?", status)
	}

	skip := c.QueryInt("skip", 0)
	limit := c.QueryInt("limit", 100)
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var bookings []models.Booking
	if err := query.
		Preload("Consumer").
		Preload("Vendor").
		Preload("Market").
		Preload("Items").
		Preload("Items.Product").
		Order("created_at desc").
		Offset(skip).Limit(limit).
		Find(&bookings).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not list bookings")
	}

	res := make([]BookingResponse, 0, len(bookings))
	for i := range bookings {
		res = append(res, toBookingResponse(&bookings[i]))
	}
	return c.JSON(res)
}

// GET /api/v1/bookings/:id — participants and admins only.
func GetBookingHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid booking id")
		}

		b, err := loadBooking(uint(id))
		if err != nil {
			return err
		}

		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}
		role, err := auth.CurrentUserRole(c)
		if err != nil {
			return err
		}

		if role != models.RoleAdmin && b.ConsumerID != userID && b.Vendor.UserID != userID {
			return fiber.NewError(fiber.StatusForbidden, "Not authorized to view this booking")
		}

		return c.JSON(toBookingResponse(b))
	}
}
