package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/booking-platform/controllers"
)

// SetupUserRoutes configures profile and employee routes
func SetupUserRoutes(app *fiber.App, h *controllers.UserController, protected fiber.Handler) {
	users := app.Group("/users")
	users.Get("/profile", protected, h.GetProfile)
	users.Put("/profile", protected, h.UpdateProfile)
	users.Post("/profile/avatar", protected, h.UploadAvatar)

	users.Get("/employees", protected, h.ListEmployees)
	users.Post("/employees", protected, h.AddEmployee)
	users.Delete("/employees/:id", protected, h.RemoveEmployee)

	users.Get("/:id", h.PublicProfile)
}
