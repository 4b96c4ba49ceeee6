package catalogController

import (
	"cbi/middleware"
	"cbi/services"

	"github.com/gofiber/fiber/v2"
)

// Controller exposes the read-only listings.
type Controller struct {
	Catalog *services.Catalog
}

func (ctl *Controller) Tickers(c *fiber.Ctx) error {
	tickers, err := ctl.Catalog.ListTickers(c.UserContext())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"tickers": tickers})
}

func (ctl *Controller) Kpis(c *fiber.Ctx) error {
	names, err := ctl.Catalog.ListKPINames(c.UserContext(), c.Locals("ticker").(string))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"kpis": names})
}

// Dashboard returns the latest submissions; ?limit overrides the default page size.
func (ctl *Controller) Dashboard(c *fiber.Ctx) error {
	dash, err := ctl.Catalog.Dashboard(c.UserContext(), c.QueryInt("limit", services.DefaultDashboardLimit))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return c.JSON(dash)
}

func (ctl *Controller) Data(c *fiber.Ctx) error {
	subs, err := ctl.Catalog.Data(c.UserContext())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"submissions": subs})
}
