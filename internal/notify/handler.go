package notify

import (
	"nijimarket-backend/internal/auth"
	"nijimarket-backend/internal/config"
	"nijimarket-backend/internal/database"
	"nijimarket-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type NotificationResponse struct {
	ID        uint                    `json:"id"`
	Type      models.NotificationType `json:"type"`
	Title     string                  `json:"title"`
	Body      string                  `json:"body"`
	Data      string                  `json:"data"`
	IsRead    bool                    `json:"is_read"`
	CreatedAt string                  `json:"created_at"`
}

// UpgradeMiddleware authenticates the websocket handshake. Browsers
// cannot set an Authorization header on the handshake, so the access
// token travels in the "token" query parameter.
func UpgradeMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		claims, err := auth.ParseToken(cfg.JWTSecret, c.Query("token"))
		if err != nil || claims.TokenType != auth.TokenTypeAccess {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
		}

		c.Locals(auth.CtxUserIDKey, claims.UserID)
		return c.Next()
	}
}

// WebsocketHandler attaches the connection to the hub on the caller's
// user topic and pumps events until disconnect.
func WebsocketHandler(hub *Hub) fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, ok := conn.Locals(auth.CtxUserIDKey).(uint)
		if !ok {
			_ = conn.Close()
			return
		}

		client := NewClient(conn, userID, 32)
		hub.Attach(client, UserTopic(userID))

		go func() {
			client.ReadPump()
			hub.Detach(client)
		}()

		client.WritePump()
		hub.Detach(client)
	})
}

// -------------------------
// In-app notification feed
// -------------------------

func ListNotificationsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		limit := c.QueryInt("limit", 50)
		if limit <= 0 || limit > 200 {
			limit = 50
		}

		query := database.DB.Where("user_id = ?", userID).Order("created_at desc").Limit(limit)
		if c.QueryBool("unread_only", false) {
			query = query.Where("is_read = ?", false)
		}

		var notifications []models.Notification
		if err := query.Find(&notifications).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list notifications")
		}

		res := make([]NotificationResponse, 0, len(notifications))
		for _, n := range notifications {
			res = append(res, NotificationResponse{
				ID:        n.ID,
				Type:      n.Type,
				Title:     n.Title,
				Body:      n.Body,
				Data:      n.Data,
				IsRead:    n.IsRead,
				CreatedAt: n.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}
		return c.JSON(res)
	}
}

func UnreadCountHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var count int64
		if err := database.DB.Model(&models.Notification{}).
			Where("user_id = ? AND is_read = ?", userID, false).
			Count(&count).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not count notifications")
		}

		return c.JSON(fiber.Map{"unread": count})
	}
}

func MarkReadHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}
		id := c.Params("id")

		result := database.DB.Model(&models.Notification{}).
			Where("id = ? AND user_id = ?", id, userID).
			Update("is_read", true)
		if result.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update notification")
		}
		if result.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusNotFound, "Notification not found")
		}

		return c.JSON(fiber.Map{"message": "Notification marked as read"})
	}
}

func MarkAllReadHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		if err := database.DB.Model(&models.Notification{}).
			Where("user_id = ? AND is_read = ?", userID, false).
			Update("is_read", true).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update notifications")
		}

		return c.JSON(fiber.Map{"message": "All notifications marked as read"})
	}
}
