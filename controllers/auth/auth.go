package authController

import (
	"time"

	"cbi/middleware"
	authValidator "cbi/validators/auth"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Controller signs dashboard users in and out.
type Controller struct {
	Auth       middleware.Authenticator
	JWTKey     []byte
	SessionTTL time.Duration
	Logger     *zap.Logger
}

func (ctl *Controller) Login(c *fiber.Ctx) error {
	reqData := c.Locals("validatedLogin").(*authValidator.LoginRequest)

	if !ctl.Auth.Authenticate(reqData.Username, reqData.Password) {
		ctl.Logger.Warn("login rejected", zap.String("username", reqData.Username), zap.String("ip", c.IP()))
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid credentials", nil)
	}

	token, err := middleware.GenerateJWT(reqData.Username, ctl.JWTKey, ctl.SessionTTL)
	if err != nil {
		ctl.Logger.Error("signing session token", zap.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(ctl.SessionTTL),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Redirect("/dashboard", fiber.StatusFound)
}

func (ctl *Controller) Logout(c *fiber.Ctx) error {
	c.ClearCookie(middleware.SessionCookie)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Logged out", nil)
}
