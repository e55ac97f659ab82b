package controllers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/meinhoongagan/booking-platform/middleware"
	"github.com/meinhoongagan/booking-platform/usecase"
	"github.com/meinhoongagan/booking-platform/utils"
)

type ServiceController struct {
	catalog      *usecase.CatalogUsecase
	appointments *usecase.AppointmentUsecase
	log          *zap.Logger
}

func NewServiceController(catalog *usecase.CatalogUsecase, appointments *usecase.AppointmentUsecase, log *zap.Logger) *ServiceController {
	return &ServiceController{catalog: catalog, appointments: appointments, log: log}
}

// GetAllServices lists the catalog. Query: category, deliveryType, q,
// providerId, sort (name|price|duration), order (asc|desc).
func (h *ServiceController) GetAllServices(c *fiber.Ctx) error {
	f := usecase.ServiceFilter{
		Category:     c.Query("category"),
		DeliveryType: c.Query("deliveryType"),
		Q:            c.Query("q"),
		Sort:         c.Query("sort"),
		Order:        c.Query("order"),
	}
	if pid := c.QueryInt("providerId"); pid > 0 {
		f.ProviderID = uint(pid)
	}
	services, err := h.catalog.List(c.UserContext(), middleware.UserID(c), f)
	if err != nil {
		return fail(c, h.log, "Failed to list services", err)
	}
	return c.JSON(services)
}

func (h *ServiceController) GetService(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid service ID", err)
	}
	svc, err := h.catalog.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, h.log, "Failed to load service", err)
	}
	return c.JSON(svc)
}

func (h *ServiceController) GetSlots(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid service ID", err)
	}
	slots, err := h.appointments.ListSlots(c.UserContext(), id, c.Query("date"))
	if err != nil {
		return fail(c, h.log, "Failed to list slots", err)
	}
	return c.JSON(slots)
}

func (h *ServiceController) CreateService(c *fiber.Ctx) error {
	var in usecase.ServiceInput
	if err := c.BodyParser(&in); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON", err)
	}
	svc, err := h.catalog.Create(c.UserContext(), middleware.UserID(c), in)
	if err != nil {
		return fail(c, h.log, "Failed to create service", err)
	}
	return c.Status(fiber.StatusCreated).JSON(svc)
}

func (h *ServiceController) UpdateService(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid service ID", err)
	}
	var in usecase.ServiceInput
	if err := c.BodyParser(&in); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON", err)
	}
	svc, err := h.catalog.Update(c.UserContext(), middleware.UserID(c), id, in)
	if err != nil {
		return fail(c, h.log, "Failed to update service", err)
	}
	return c.JSON(svc)
}

func (h *ServiceController) DeleteService(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid service ID", err)
	}
	if err := h.catalog.Delete(c.UserContext(), middleware.UserID(c), id); err != nil {
		return fail(c, h.log, "Failed to delete service", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ServiceController) GetCategories(c *fiber.Ctx) error {
	return c.JSON(h.catalog.Categories())
}

func (h *ServiceController) GetDeliveryTypes(c *fiber.Ctx) error {
	return c.JSON(h.catalog.DeliveryTypes())
}
