package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/nilesh0210977/facial-recognition-implementation/internal/repository"
)

const (
	version      = "0.1.0"
	readyTimeout = 2 * time.Second
)

type HealthHandler struct {
	store repository.Pinger
}

// NewHealthHandler builds the health handler. store may be nil, in which
// case readiness only reports that the process is up.
func NewHealthHandler(store repository.Pinger) *HealthHandler {
	return &HealthHandler{store: store}
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:  "ok",
		Version: version,
	})
}

func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	if h.store != nil {
		ctx, cancel := context.WithTimeout(c.Context(), readyTimeout)
		defer cancel()

		if err := h.store.Ping(ctx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(HealthResponse{
				Status: "unavailable",
				Error:  "template store unreachable",
			})
		}
	}

	return c.JSON(HealthResponse{
		Status: "ready",
	})
}
