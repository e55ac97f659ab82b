package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/booking-platform/utils"
)

// RequireRole rejects callers whose token carries a different role.
// It must run after Protected.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		got, _ := c.Locals(LocalRole).(string)
		if got != role {
			return c.Status(fiber.StatusForbidden).JSON(utils.ErrorResponse{
				Message: "You don't have permission to perform this action",
			})
		}
		return c.Next()
	}
}
