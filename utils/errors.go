package utils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Error kinds shared by every layer. Wrap them with fmt.Errorf("%w: ...")
// so handlers can map them back with errors.Is.
var (
	ErrValidation  = errors.New("validation error")
	ErrAuth        = errors.New("authentication error")
	ErrForbidden   = errors.New("forbidden")
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrRateLimited = errors.New("rate limited")
	ErrNotReady    = errors.New("channel not ready")
	ErrDelivery    = errors.New("delivery failed")
)

// StatusFor maps an error to the HTTP status it should surface as.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrAuth):
		return fiber.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, ErrRateLimited):
		return fiber.StatusTooManyRequests
	case errors.Is(err, ErrNotReady):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, ErrDelivery):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
