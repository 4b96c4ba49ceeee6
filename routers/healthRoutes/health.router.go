package healthRoutes

import (
	healthController "cbi/controllers/health"

	"github.com/gofiber/fiber/v2"
)

func SetupHealthRoutes(app *fiber.App, ctl *healthController.Controller) {
	app.Get("/healthz", ctl.Health)
	app.Get("/readyz", ctl.Ready)
}
