package controllers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/meinhoongagan/booking-platform/middleware"
	"github.com/meinhoongagan/booking-platform/notify"
	"github.com/meinhoongagan/booking-platform/utils"
)

type NotificationController struct {
	store *notify.Store
	log   *zap.Logger
}

func NewNotificationController(store *notify.Store, log *zap.Logger) *NotificationController {
	return &NotificationController{store: store, log: log}
}

func (h *NotificationController) GetNotifications(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	list, err := h.store.List(c.UserContext(), userID, c.QueryBool("unread"), c.QueryInt("limit"))
	if err != nil {
		return fail(c, h.log, "Failed to list notifications", err)
	}
	unread, err := h.store.UnreadCount(c.UserContext(), userID)
	if err != nil {
		return fail(c, h.log, "Failed to count notifications", err)
	}
	return c.JSON(fiber.Map{"notifications": list, "unread": unread})
}

func (h *NotificationController) MarkRead(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid notification ID", err)
	}
	n, err := h.store.MarkRead(c.UserContext(), middleware.UserID(c), id)
	if err != nil {
		return fail(c, h.log, "Failed to mark notification", err)
	}
	return c.JSON(n)
}

func (h *NotificationController) MarkAllRead(c *fiber.Ctx) error {
	n, err := h.store.MarkAllRead(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return fail(c, h.log, "Failed to mark notifications", err)
	}
	return c.JSON(fiber.Map{"updated": n})
}
