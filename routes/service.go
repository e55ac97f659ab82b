package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/booking-platform/controllers"
	"github.com/meinhoongagan/booking-platform/middleware"
	"github.com/meinhoongagan/booking-platform/models"
)

func SetupServiceRoutes(app *fiber.App, h *controllers.ServiceController, protected, optional fiber.Handler) {
	provider := middleware.RequireRole(string(models.RoleProvider))

	service := app.Group("/services")
	service.Get("/", optional, h.GetAllServices)
	service.Get("/:id", h.GetService)
	service.Get("/:id/slots", h.GetSlots)
	service.Post("/", protected, provider, h.CreateService)
	service.Put("/:id", protected, provider, h.UpdateService)
	service.Delete("/:id", protected, provider, h.DeleteService)

	app.Get("/categories", h.GetCategories)
	app.Get("/delivery-types", h.GetDeliveryTypes)
}
