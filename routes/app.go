package routes

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/meinhoongagan/booking-platform/controllers"
	"github.com/meinhoongagan/booking-platform/middleware"
	"github.com/meinhoongagan/booking-platform/utils"
)

// Handlers groups every controller mounted on the API.
type Handlers struct {
	Auth          *controllers.AuthController
	Users         *controllers.UserController
	Services      *controllers.ServiceController
	Appointments  *controllers.AppointmentController
	Notifications *controllers.NotificationController
	Dashboard     *controllers.DashboardController
	Health        *controllers.HealthController
}

// NewApp builds the fiber app with the shared middleware stack and every
// route group.
func NewApp(h Handlers, jwtSecret string, allowOrigins string, log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "booking-platform",
		BodyLimit:    8 << 20,
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(middleware.RequestLogger(log))
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Get("/health", h.Health.Health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	protected := middleware.Protected(jwtSecret)
	SetupAuthRoutes(app, h.Auth, protected)
	SetupUserRoutes(app, h.Users, protected)
	SetupServiceRoutes(app, h.Services, protected, middleware.OptionalAuth(jwtSecret))
	SetupAppointmentRoutes(app, h.Appointments, protected)
	SetupNotificationRoutes(app, h.Notifications, h.Users, protected)
	SetupDashboardRoutes(app, h.Dashboard, protected)
	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	resp := utils.ErrorResponse{Message: "Internal Server Error"}
	if code != fiber.StatusInternalServerError {
		resp.Message = err.Error()
	}
	return c.Status(code).JSON(resp)
}
