package middleware

import (
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"

	"github.com/meinhoongagan/booking-platform/utils"
)

// Locals keys set by Protected.
const (
	LocalUserID = "userID"
	LocalRole   = "role"
)

// Protected validates the bearer access token and stores the caller's id
// and role in the request locals.
func Protected(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   []byte(secret),
		Claims:       &utils.Claims{},
		ErrorHandler: jwtError,
		SuccessHandler: func(c *fiber.Ctx) error {
			token, _ := c.Locals("user").(*jwt.Token)
			claims, err := utils.ClaimsFrom(token)
			if err != nil || claims.Kind != utils.TokenAccess {
				return c.Status(fiber.StatusUnauthorized).JSON(utils.ErrorResponse{
					Message: "Invalid or expired token",
				})
			}
			c.Locals(LocalUserID, claims.UserID)
			c.Locals(LocalRole, claims.Role)
			return c.Next()
		},
	})
}

// UserID returns the authenticated caller, or 0 on public routes.
func UserID(c *fiber.Ctx) uint {
	id, _ := c.Locals(LocalUserID).(uint)
	return id
}

// OptionalAuth sets the caller's id when a valid token is present and lets
// anonymous requests through.
func OptionalAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		auth := c.Get(fiber.HeaderAuthorization)
		if len(auth) > 7 && auth[:7] == "Bearer " {
			if claims, err := utils.ParseToken(secret, auth[7:], utils.TokenAccess); err == nil {
				c.Locals(LocalUserID, claims.UserID)
				c.Locals(LocalRole, claims.Role)
			}
		}
		return c.Next()
	}
}

func jwtError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusUnauthorized).JSON(utils.ErrorResponse{
		Message: "Invalid or expired token",
		Error:   err.Error(),
	})
}
