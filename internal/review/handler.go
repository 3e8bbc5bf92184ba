package review

import (
	"fmt"

	"nijimarket-backend/internal/audit"
	"nijimarket-backend/internal/auth"
	"nijimarket-backend/internal/database"
	"nijimarket-backend/internal/models"
	"nijimarket-backend/internal/notify"

	"github.com/gofiber/fiber/v2"
)

type CreateReviewRequest struct {
	BookingID     uint   `json:"booking_id"`
	Rating        int    `json:"rating"`
	Comment       string `json:"comment"`
	QualityRating *int   `json:"quality_rating"`
	ServiceRating *int   `json:"service_rating"`
	ValueRating   *int   `json:"value_rating"`
}

type ReviewResponse struct {
	ID            uint   `json:"id"`
	ConsumerID    uint   `json:"consumer_id"`
	ConsumerName  string `json:"consumer_name"`
	VendorID      uint   `json:"vendor_id"`
	BookingID     uint   `json:"booking_id"`
	Rating        int    `json:"rating"`
	Comment       string `json:"comment"`
	QualityRating *int   `json:"quality_rating"`
	ServiceRating *int   `json:"service_rating"`
	ValueRating   *int   `json:"value_rating"`
	IsVerified    bool   `json:"is_verified"`
	IsApproved    bool   `json:"is_approved"`
	CreatedAt     string `json:"created_at"`
}

func toReviewResponse(r *models.Review) ReviewResponse {
	return ReviewResponse{
		ID:            r.ID,
		ConsumerID:    r.ConsumerID,
		ConsumerName:  r.Consumer.FullName,
		VendorID:      r.VendorID,
		BookingID:     r.BookingID,
		Rating:        r.Rating,
		Comment:       r.Comment,
		QualityRating: r.QualityRating,
		ServiceRating: r.ServiceRating,
		ValueRating:   r.ValueRating,
		IsVerified:    r.IsVerified,
		IsApproved:    r.IsApproved,
		CreatedAt:     r.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func validRating(r int) bool {
	return r >= 1 && r <= 5
}

// recalcVendorRating refreshes the vendor aggregate over approved
// reviews only, so moderation immediately affects the public score.
func recalcVendorRating(vendorID uint) error {
	type agg struct {
		Avg   float64
		Count int
	}
	var result agg
	if err := database.DB.Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) as avg, COUNT(*) as count").
		Where("vendor_id = ? AND is_approved = ?", vendorID, true).
		Scan(&result).Error; err != nil {
		return err
	}

	return database.DB.Model(&models.Vendor{}).
		Where("id = ?", vendorID).
		Updates(map[string]interface{}{
			"average_rating": result.Avg,
			"total_reviews":  result.Count,
		}).Error
}

// POST /api/v1/reviews — consumer reviews a completed booking once.
func CreateReviewHandler(notifier *notify.Notifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, err := auth.CurrentUserRole(c)
		if err != nil {
			return err
		}
		if role != models.RoleConsumer {
			return fiber.NewError(fiber.StatusForbidden, "Only consumers can write reviews")
		}

		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var body CreateReviewRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if !validRating(body.Rating) {
			return fiber.NewError(fiber.StatusBadRequest, "Rating must be between 1 and 5")
		}
		for _, sub := range []*int{body.QualityRating, body.ServiceRating, body.ValueRating} {
			if sub != nil && !validRating(*sub) {
				return fiber.NewError(fiber.StatusBadRequest, "Sub-ratings must be between 1 and 5")
			}
		}

		var b models.Booking
		if err := database.DB.Preload("Vendor").First(&b, body.BookingID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Booking not found")
		}
		if b.ConsumerID != userID {
			return fiber.NewError(fiber.StatusForbidden, "You can only review your own bookings")
		}
		if b.Status != models.BookingCompleted {
			return fiber.NewError(fiber.StatusBadRequest, "Only completed bookings can be reviewed")
		}

		var count int64
		database.DB.Model(&models.Review{}).Where("booking_id = ?", b.ID).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "This booking has already been reviewed")
		}

		review := models.Review{
			ConsumerID:    userID,
			VendorID:      b.VendorID,
			BookingID:     b.ID,
			Rating:        body.Rating,
			Comment:       body.Comment,
			QualityRating: body.QualityRating,
			ServiceRating: body.ServiceRating,
			ValueRating:   body.ValueRating,
			IsVerified:    true, // backed by a completed booking
			IsApproved:    true,
		}

		if err := database.DB.Create(&review).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create review")
		}

		if err := recalcVendorRating(b.VendorID); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update vendor rating")
		}

		event := notify.NewEvent("review", "created", fmt.Sprintf("%d", review.ID)).
			WithData(fiber.Map{"review_id": review.ID, "vendor_id": b.VendorID, "rating": review.Rating})
		notifier.Send(c.Context(), b.Vendor.UserID, models.NotificationReviewReceived,
			"You received a new review",
			fmt.Sprintf("A consumer rated booking %s with %d stars.", b.BookingNumber, review.Rating),
			event)

		database.DB.Preload("Consumer").First(&review, review.ID)
		return c.Status(fiber.StatusCreated).JSON(toReviewResponse(&review))
	}
}

// GET /api/v1/vendors/:id/reviews — public, approved only.
func VendorReviewsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		vendorID, err := c.ParamsInt("id")
		if err != nil || vendorID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid vendor id")
		}

		skip := c.QueryInt("skip", 0)
		limit := c.QueryInt("limit", 50)
		if limit <= 0 || limit > 200 {
			limit = 50
		}

		var reviews []models.Review
		if err := database.DB.Preload("Consumer").
			Where("vendor_id = ? AND is_approved = ?", vendorID, true).
			Order("created_at desc").
			Offset(skip).Limit(limit).
			Find(&reviews).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list reviews")
		}

		res := make([]ReviewResponse, 0, len(reviews))
		for i := range reviews {
			res = append(res, toReviewResponse(&reviews[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/v1/admin/reviews?approved=false — moderation queue.
func ModerationQueueHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := database.DB.Preload("Consumer")
		if approved := c.Query("approved"); approved != "" {
			query = query.Where("is_approved = ?", approved == "true" || approved == "1")
		}

		var reviews []models.Review
		if err := query.Order("created_at desc").Limit(200).Find(&reviews).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list reviews")
		}

		res := make([]ReviewResponse, 0, len(reviews))
		for i := range reviews {
			res = append(res, toReviewResponse(&reviews[i]))
		}
		return c.JSON(res)
	}
}

func setApproved(c *fiber.Ctx, approved bool) error {
	reviewID, err := c.ParamsInt("id")
	if err != nil || reviewID <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid review id")
	}

	var review models.Review
	if err := database.DB.First(&review, reviewID).Error; err != nil {
		return fiber.NewError(fiber.StatusNotFound, "Review not found")
	}
	before := review

	review.IsApproved = approved
	if err := database.DB.Save(&review).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not update review")
	}

	if err := recalcVendorRating(review.VendorID); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not update vendor rating")
	}

	if userID, userName, err := audit.Actor(c); err == nil {
		desc := "Review rejected"
		if approved {
			desc = "Review approved"
		}
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "review",
			EntityID:    review.ID,
			Action:      models.AuditActionUpdate,
			Description: desc,
			Before:      before,
			After:       review,
		})
	}

	msg := "Review rejected"
	if approved {
		msg = "Review approved"
	}
	return c.JSON(fiber.Map{"message": msg})
}

// POST /api/v1/admin/reviews/:id/approve
func ApproveReviewHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return setApproved(c, true)
	}
}

// POST /api/v1/admin/reviews/:id/reject
func RejectReviewHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return setApproved(c, false)
	}
}

// DELETE /api/v1/reviews/:id — author or admin.
func DeleteReviewHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reviewID, err := c.ParamsInt("id")
		if err != nil || reviewID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid review id")
		}

		var review models.Review
		if err := database.DB.First(&review, reviewID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Review not found")
		}

		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}
		role, err := auth.CurrentUserRole(c)
		if err != nil {
			return err
		}
		if role != models.RoleAdmin && review.ConsumerID != userID {
			return fiber.NewError(fiber.StatusForbidden, "Not authorized to delete this review")
		}

		if err := database.DB.Delete(&review).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete review")
		}

		if err := recalcVendorRating(review.VendorID); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update vendor rating")
		}

		return c.JSON(fiber.Map{"message": "Review deleted successfully"})
	}
}
