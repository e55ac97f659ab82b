package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/booking-platform/controllers"
	"github.com/meinhoongagan/booking-platform/middleware"
	"github.com/meinhoongagan/booking-platform/models"
)

// SetupAppointmentRoutes configures all appointment related routes
func SetupAppointmentRoutes(app *fiber.App, h *controllers.AppointmentController, protected fiber.Handler) {
	appointment := app.Group("/appointments", protected)
	appointment.Get("/", h.GetAppointments)
	appointment.Post("/", h.CreateAppointment)
	appointment.Put("/:id/status", h.UpdateStatus)
}

func SetupDashboardRoutes(app *fiber.App, h *controllers.DashboardController, protected fiber.Handler) {
	app.Get("/dashboard/stats", protected, middleware.RequireRole(string(models.RoleProvider)), h.GetStats)
}
