package controllers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/meinhoongagan/booking-platform/utils"
)

// fail maps err to its status, logging anything that surfaces as a 500.
func fail(c *fiber.Ctx, log *zap.Logger, message string, err error) error {
	if utils.StatusFor(err) == fiber.StatusInternalServerError {
		log.Error(message, zap.String("path", c.Path()), zap.Error(err))
	}
	return utils.Fail(c, message, err)
}

func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid "+name)
	}
	return uint(id), nil
}
