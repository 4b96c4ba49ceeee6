package submissionRoutes

import (
	submissionController "cbi/controllers/submission"
	submissionValidator "cbi/validators/submission"

	"github.com/gofiber/fiber/v2"
)

func SetupSubmissionRoutes(app *fiber.App, ctl *submissionController.Controller) {
	app.Post("/submit", submissionValidator.Submit(), ctl.Submit)
	app.Get("/retrieve", submissionValidator.Retrieve(), ctl.Retrieve)
	app.Delete("/submissions/:id", submissionValidator.DeleteID(), ctl.Delete)
}
