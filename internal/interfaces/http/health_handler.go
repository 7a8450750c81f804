package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Pinger verificación de dependencias para /health (pool de Postgres, cliente Redis...).
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler estado del servicio.
type HealthHandler struct {
	name    string
	checks  map[string]Pinger
	timeout time.Duration
}

// NewHealthHandler construye el handler. checks puede ser nil (backend en memoria).
func NewHealthHandler(name string, checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{name: name, checks: checks, timeout: 2 * time.Second}
}

// Health godoc
// @Summary      Health check
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]any
// @Failure      503  {object}  map[string]any
// @Router       /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	status := "ok"
	deps := make(map[string]string, len(h.checks))
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			deps[name] = err.Error()
			status = "degraded"
			continue
		}
		deps[name] = "ok"
	}
	code := fiber.StatusOK
	if status != "ok" {
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{"status": status, "service": h.name, "dependencies": deps})
}
