package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Probe checks one dependency. A nil error means healthy.
type Probe func(ctx context.Context) error

// HealthHandler reports the health of the service and its dependencies.
type HealthHandler struct {
	probes map[string]Probe
}

// NewHealthHandler creates a HealthHandler running probes on every check.
func NewHealthHandler(probes map[string]Probe) *HealthHandler {
	return &HealthHandler{probes: probes}
}

// RegisterRoutes registers GET /health.
func (h *HealthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/health", h.HandleHealth)
}

// HandleHealth answers 200 when every probe passes and 503 otherwise.
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
	defer cancel()

	status := "healthy"
	checks := make(map[string]string, len(h.probes))
	for name, probe := range h.probes {
		if err := probe(ctx); err != nil {
			checks[name] = err.Error()
			status = "degraded"
			continue
		}
		checks[name] = "ok"
	}

	code := fiber.StatusOK
	if status != "healthy" {
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
		"checks": checks,
	})
}
