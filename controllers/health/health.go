package healthController

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// Pinger reports whether the datastore answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Controller struct {
	DB Pinger
}

func (ctl *Controller) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (ctl *Controller) Ready(c *fiber.Ctx) error {
	if ctl.DB == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "db_missing"})
	}
	if err := ctl.DB.Ping(c.UserContext()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "db_unreachable"})
	}
	return c.JSON(fiber.Map{"status": "ready"})
}
