package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/liftlog/internal/service"
)

// Historical1RMHandler exposes the whole derived index and its maintenance operations
type Historical1RMHandler struct {
	historical *service.Historical1RMService
}

func NewHistorical1RMHandler(historical *service.Historical1RMService) *Historical1RMHandler {
	return &Historical1RMHandler{
		historical: historical,
	}
}

// Snapshot GET /v1/historical-1rm
func (h *Historical1RMHandler) Snapshot(c *fiber.Ctx) error {
	return c.JSON(h.historical.Snapshot(c.UserContext()))
}

// Bootstrap POST /v1/historical-1rm/bootstrap
func (h *Historical1RMHandler) Bootstrap(c *fiber.Ctx) error {
	if err := h.historical.Bootstrap(c.UserContext()); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(h.historical.Snapshot(c.UserContext()))
}

// Reset POST /v1/historical-1rm/reset
func (h *Historical1RMHandler) Reset(c *fiber.Ctx) error {
	if err := h.historical.Reset(c.UserContext()); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(h.historical.Snapshot(c.UserContext()))
}
