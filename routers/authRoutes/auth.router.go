package authRoutes

import (
	authControllers "cbi/controllers/auth"
	authValidators "cbi/validators/auth"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App, ctl *authControllers.Controller) {
	app.Post("/login", authValidators.Login(), ctl.Login)
	app.Post("/logout", ctl.Logout)
}
