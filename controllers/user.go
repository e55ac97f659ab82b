package controllers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/meinhoongagan/booking-platform/middleware"
	"github.com/meinhoongagan/booking-platform/models"
	"github.com/meinhoongagan/booking-platform/usecase"
	"github.com/meinhoongagan/booking-platform/utils"
)

const maxAvatarBytes = 5 << 20

type UserController struct {
	identity *usecase.IdentityUsecase
	log      *zap.Logger
}

func NewUserController(identity *usecase.IdentityUsecase, log *zap.Logger) *UserController {
	return &UserController{identity: identity, log: log}
}

func (h *UserController) GetProfile(c *fiber.Ctx) error {
	user, err := h.identity.GetProfile(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return fail(c, h.log, "Failed to load profile", err)
	}
	return c.JSON(user)
}

func (h *UserController) UpdateProfile(c *fiber.Ctx) error {
	var in usecase.ProfileUpdate
	if err := c.BodyParser(&in); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON", err)
	}
	user, err := h.identity.UpdateProfile(c.UserContext(), middleware.UserID(c), in)
	if err != nil {
		return fail(c, h.log, "Failed to update profile", err)
	}
	return c.JSON(user)
}

// UploadAvatar expects a multipart form with an "avatar" file.
func (h *UserController) UploadAvatar(c *fiber.Ctx) error {
	fh, err := c.FormFile("avatar")
	if err != nil {
		return utils.BadRequest(c, "avatar file is required", err)
	}
	if fh.Size > maxAvatarBytes {
		return utils.BadRequest(c, "avatar must be at most 5MB", nil)
	}
	file, err := fh.Open()
	if err != nil {
		return utils.BadRequest(c, "Cannot read avatar", err)
	}
	defer file.Close()

	user, err := h.identity.UploadAvatar(c.UserContext(), middleware.UserID(c), file)
	if err != nil {
		return fail(c, h.log, "Failed to upload avatar", err)
	}
	return c.JSON(user)
}

func (h *UserController) PublicProfile(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid user ID", err)
	}
	profile, err := h.identity.PublicProfile(c.UserContext(), id)
	if err != nil {
		return fail(c, h.log, "Failed to load provider", err)
	}
	return c.JSON(profile)
}

func (h *UserController) ListEmployees(c *fiber.Ctx) error {
	list, err := h.identity.ListEmployees(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return fail(c, h.log, "Failed to list employees", err)
	}
	return c.JSON(list)
}

func (h *UserController) AddEmployee(c *fiber.Ctx) error {
	var in usecase.EmployeeInput
	if err := c.BodyParser(&in); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON", err)
	}
	employee, err := h.identity.AddEmployee(c.UserContext(), middleware.UserID(c), in)
	if err != nil {
		return fail(c, h.log, "Failed to add employee", err)
	}
	return c.Status(fiber.StatusCreated).JSON(employee)
}

func (h *UserController) RemoveEmployee(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid employee ID", err)
	}
	if err := h.identity.RemoveEmployee(c.UserContext(), middleware.UserID(c), id); err != nil {
		return fail(c, h.log, "Failed to remove employee", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Subscribe stores the browser push subscription of the caller.
func (h *UserController) Subscribe(c *fiber.Ctx) error {
	var sub models.PushSubscription
	if err := c.BodyParser(&sub); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON", err)
	}
	if err := h.identity.SavePushSubscription(c.UserContext(), middleware.UserID(c), sub); err != nil {
		return fail(c, h.log, "Failed to save subscription", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Subscribed"})
}
