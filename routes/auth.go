package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/meinhoongagan/booking-platform/controllers"
	"github.com/meinhoongagan/booking-platform/utils"
)

// SetupAuthRoutes configures all authentication related routes
func SetupAuthRoutes(app *fiber.App, h *controllers.AuthController, protected fiber.Handler) {
	auth := app.Group("/auth")

	// Public routes, throttled per client IP
	public := auth.Group("", limiter.New(limiter.Config{
		Max:        20,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(utils.ErrorResponse{Message: "Too many requests"})
		},
	}))
	public.Post("/send-verification-otp", h.SendVerificationOTP)
	public.Post("/register", h.Register)
	public.Post("/login", h.Login)
	public.Post("/login-verify", h.LoginVerify)
	public.Post("/forgot-password", h.ForgotPassword)
	public.Post("/reset-password", h.ResetPassword)
	public.Post("/refresh", h.RefreshToken)

	// Protected routes
	auth.Put("/update-password", protected, h.UpdatePassword)
}
