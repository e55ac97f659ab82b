package controllers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/meinhoongagan/booking-platform/middleware"
	"github.com/meinhoongagan/booking-platform/usecase"
	"github.com/meinhoongagan/booking-platform/utils"
)

type AppointmentController struct {
	appointments *usecase.AppointmentUsecase
	log          *zap.Logger
}

func NewAppointmentController(appointments *usecase.AppointmentUsecase, log *zap.Logger) *AppointmentController {
	return &AppointmentController{appointments: appointments, log: log}
}

func (h *AppointmentController) GetAppointments(c *fiber.Ctx) error {
	list, err := h.appointments.List(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return fail(c, h.log, "Failed to list appointments", err)
	}
	return c.JSON(list)
}

func (h *AppointmentController) CreateAppointment(c *fiber.Ctx) error {
	var in usecase.CreateAppointmentInput
	if err := c.BodyParser(&in); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON", err)
	}
	appt, err := h.appointments.Create(c.UserContext(), middleware.UserID(c), in)
	if err != nil {
		return fail(c, h.log, "Failed to create appointment", err)
	}
	return c.Status(fiber.StatusCreated).JSON(appt)
}

func (h *AppointmentController) UpdateStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid appointment ID", err)
	}
	var in struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&in); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON", err)
	}
	appt, err := h.appointments.UpdateStatus(c.UserContext(), id, in.Status, middleware.UserID(c))
	if err != nil {
		return fail(c, h.log, "Failed to update appointment status", err)
	}
	return c.JSON(appt)
}
