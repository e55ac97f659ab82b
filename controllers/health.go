package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Readiness is implemented by the WhatsApp session.
type Readiness interface {
	Configured() bool
	Ready() bool
}

type HealthController struct {
	db       *gorm.DB
	rdb      redis.UniversalClient
	whatsapp Readiness
}

func NewHealthController(db *gorm.DB, rdb redis.UniversalClient, whatsapp Readiness) *HealthController {
	return &HealthController{db: db, rdb: rdb, whatsapp: whatsapp}
}

func (h *HealthController) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := fiber.StatusOK
	body := fiber.Map{"status": "ok", "database": "up", "redis": "up", "whatsapp": "disabled"}

	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		body["database"] = "down"
		status = fiber.StatusServiceUnavailable
	}
	if h.rdb == nil || h.rdb.Ping(ctx).Err() != nil {
		body["redis"] = "down"
		status = fiber.StatusServiceUnavailable
	}
	if h.whatsapp != nil && h.whatsapp.Configured() {
		body["whatsapp"] = "pairing"
		if h.whatsapp.Ready() {
			body["whatsapp"] = "ready"
		}
	}
	if status != fiber.StatusOK {
		body["status"] = "degraded"
	}
	return c.Status(status).JSON(body)
}
