package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/smart-clinic/utils"
)

// Check reports whether a backing component is reachable.
type Check func(ctx context.Context) error

type HealthController struct {
	checks  map[string]Check
	timeout time.Duration
}

func NewHealthController(checks map[string]Check) *HealthController {
	return &HealthController{checks: checks, timeout: 2 * time.Second}
}

// Live only says the process is serving.
func (h *HealthController) Live(c *fiber.Ctx) error {
	return utils.Success(c, "Service is up", fiber.Map{"status": "UP"})
}

// Ready pings every component and answers 503 if any is down.
func (h *HealthController) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	components := make(map[string]string, len(h.checks))
	healthy := true
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			components[name] = "DOWN"
			healthy = false
			continue
		}
		components[name] = "UP"
	}
	if !healthy {
		return utils.Fail(c, fiber.StatusServiceUnavailable, "Service is degraded", components)
	}
	return utils.Success(c, "Service is ready", components)
}
