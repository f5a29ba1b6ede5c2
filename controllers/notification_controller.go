// controllers/notification_controller.go
package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/zakariaaboussaad/maintenance-app2-sub003/models"
	"github.com/zakariaaboussaad/maintenance-app2-sub003/services"
	"github.com/zakariaaboussaad/maintenance-app2-sub003/utils"
)

// NotificationController exposes the in-app notification feed.
type NotificationController struct {
	DB            *mongo.Client
	Notifications *services.NotificationService
	Dispatcher    *services.NotificationDispatcher
}

func NewNotificationController(db *mongo.Client, notifications *services.NotificationService, dispatcher *services.NotificationDispatcher) *NotificationController {
	return &NotificationController{DB: db, Notifications: notifications, Dispatcher: dispatcher}
}

// GetNotifications returns the caller's feed, newest first, with the unread
// counter alongside
func (nc *NotificationController) GetNotifications(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	unreadOnly := c.QueryParam("unread") == "true"
	limit := int64(50)
	if raw := c.QueryParam("limit"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}

	notifications, err := nc.Notifications.ListForUser(ctx, userID, unreadOnly, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch notifications",
		})
	}

	unread, err := nc.Notifications.UnreadCount(ctx, userID)
	if err != nil {
		unread = 0
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Notifications retrieved",
		Data: map[string]interface{}{
			"notifications": notifications,
			"unreadCount":   unread,
		},
	})
}

// GetUnreadCount returns just the badge counter
func (nc *NotificationController) GetUnreadCount(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	unread, err := nc.Notifications.UnreadCount(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to count notifications",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Unread count retrieved",
		Data:    map[string]int64{"unreadCount": unread},
	})
}

// MarkAsRead flips one notification owned by the caller
func (nc *NotificationController) MarkAsRead(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	notificationID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid notification ID",
		})
	}

	modified, err := nc.Notifications.MarkAsRead(ctx, userID, notificationID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to mark notification as read",
		})
	}
	if modified == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Notification not found or already read",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Notification marked as read",
	})
}

// MarkAllAsRead flips every unread notification of the caller
func (nc *NotificationController) MarkAllAsRead(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	modified, err := nc.Notifications.MarkAllAsRead(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to mark notifications as read",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "All notifications marked as read",
		Data:    map[string]int64{"modified": modified},
	})
}

// MarkTicketRead flips every unread notification of the caller tied to one
// ticket
func (nc *NotificationController) MarkTicketRead(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	ticketID, err := primitive.ObjectIDFromHex(c.Param("ticketId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid ticket ID",
		})
	}

	modified, err := nc.Notifications.MarkRelatedAsRead(ctx, userID, ticketID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to mark notifications as read",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Ticket notifications marked as read",
		Data:    map[string]int64{"modified": modified},
	})
}

// GetStats returns the caller's notification counters
func (nc *NotificationController) GetStats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	stats, err := nc.Notifications.Stats(ctx, userID)
	if err != nil {
		if errors.Is(err, services.ErrStatsUnavailable) {
			return c.JSON(http.StatusServiceUnavailable, models.Response{
				Status:  http.StatusServiceUnavailable,
				Message: "Notification stats are temporarily unavailable",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to compute notification stats",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Notification stats retrieved",
		Data:    stats,
	})
}

// SendTest broadcasts a test notification to every admin. Admin only.
func (nc *NotificationController) SendTest(c echo.Context) error {
	admin, err := utils.GetUserFromToken(c, nc.DB)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	result := nc.Dispatcher.TestNotification(c.Request().Context(), admin)
	if result.Outcome == services.OutcomeFailed {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Test notification failed",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Test notification sent",
		Data:    map[string]int{"delivered": result.Count},
	})
}

// Cleanup runs the retention sweep on demand. Admin only.
func (nc *NotificationController) Cleanup(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	deleted, err := nc.Notifications.CleanOldNotifications(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Cleanup failed",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Old notifications cleaned up",
		Data:    map[string]int64{"deleted": deleted},
	})
}
