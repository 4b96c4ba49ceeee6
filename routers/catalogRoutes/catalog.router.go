package catalogRoutes

import (
	catalogController "cbi/controllers/catalog"
	submissionValidator "cbi/validators/submission"

	"github.com/gofiber/fiber/v2"
)

func SetupCatalogRoutes(app *fiber.App, ctl *catalogController.Controller, session fiber.Handler) {
	app.Get("/tickers", ctl.Tickers)
	app.Get("/kpis", submissionValidator.KPIList(), ctl.Kpis)

	app.Get("/dashboard", session, ctl.Dashboard)
	app.Get("/data", session, ctl.Data)
}
