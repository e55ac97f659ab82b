package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/booking-platform/controllers"
)

func SetupNotificationRoutes(app *fiber.App, h *controllers.NotificationController, users *controllers.UserController, protected fiber.Handler) {
	n := app.Group("/notifications", protected)
	n.Get("/", h.GetNotifications)
	n.Put("/read-all", h.MarkAllRead)
	n.Put("/:id/read", h.MarkRead)
	n.Post("/subscribe", users.Subscribe)
}
