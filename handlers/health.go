package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Check probes one dependency
type Check func(ctx context.Context) error

// HealthHandler reports the state of the database and the cache
type HealthHandler struct {
	database Check
	cache    Check
}

// NewHealthHandler creates a health handler. cache may be nil when Redis is disabled.
func NewHealthHandler(database, cache Check) *HealthHandler {
	return &HealthHandler{database: database, cache: cache}
}

// HandleCheckHealth handles GET /ping. A failing database answers 503; a
// failing cache only degrades the status.
func (h *HealthHandler) HandleCheckHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := fiber.Map{"status": "ok", "database": "ok", "redis": "disabled"}
	code := fiber.StatusOK

	if err := h.database(ctx); err != nil {
		status["status"] = "unavailable"
		status["database"] = err.Error()
		code = fiber.StatusServiceUnavailable
	}

	if h.cache != nil {
		if err := h.cache(ctx); err != nil {
			if code == fiber.StatusOK {
				status["status"] = "degraded"
			}
			status["redis"] = err.Error()
		} else {
			status["redis"] = "ok"
		}
	}

	return c.Status(code).JSON(status)
}
