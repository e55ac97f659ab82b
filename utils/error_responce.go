package utils

import (
	"github.com/gofiber/fiber/v2"
)

// ErrorResponse is a struct for error response
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// Fail writes err as an ErrorResponse with the status matching its kind.
// Internal errors keep their detail out of the body.
func Fail(c *fiber.Ctx, message string, err error) error {
	status := StatusFor(err)
	resp := ErrorResponse{Message: message}
	if status != fiber.StatusInternalServerError {
		resp.Error = err.Error()
	}
	return c.Status(status).JSON(resp)
}

// BadRequest is the shortcut for body/param parsing failures.
func BadRequest(c *fiber.Ctx, message string, err error) error {
	resp := ErrorResponse{Message: message}
	if err != nil {
		resp.Error = err.Error()
	}
	return c.Status(fiber.StatusBadRequest).JSON(resp)
}
