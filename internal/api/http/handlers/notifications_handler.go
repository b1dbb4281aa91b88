package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/townhall/civic-service/internal/service"
)

// NotificationsHandler serves the authenticated account's notification
// feed.
type NotificationsHandler struct {
	notifications *service.NotificationService
}

func NewNotificationsHandler(notifications *service.NotificationService) *NotificationsHandler {
	return &NotificationsHandler{notifications: notifications}
}

// List handles GET /notifications. ?unread=true narrows to unread.
func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	limit, offset := pagination(c)
	notifications, err := h.notifications.List(c.UserContext(), actor, c.Query("unread") == "true", limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": notifications})
}

// MarkRead handles POST /notifications/:id/read.
func (h *NotificationsHandler) MarkRead(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	if err := h.notifications.MarkRead(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// MarkAllRead handles POST /notifications/read-all.
func (h *NotificationsHandler) MarkAllRead(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	if err := h.notifications.MarkAllRead(c.UserContext(), actor); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
