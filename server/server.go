package server

import (
	"os"

	"cbi/config"
	authController "cbi/controllers/auth"
	catalogController "cbi/controllers/catalog"
	healthController "cbi/controllers/health"
	submissionController "cbi/controllers/submission"
	"cbi/database"
	"cbi/middleware"
	"cbi/routers/authRoutes"
	"cbi/routers/catalogRoutes"
	"cbi/routers/healthRoutes"
	"cbi/routers/submissionRoutes"
	"cbi/services"
	"cbi/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Deps are the collaborators the HTTP surface is built from.
type Deps struct {
	Config *config.Config
	Logger *zap.Logger
	DB     *database.DbInstance
	Clock  *utils.Clock
	Auth   middleware.Authenticator
}

// Services bundles the domain services shared by the HTTP surface and background jobs.
type Services struct {
	Recorder *services.Recorder
	Resolver *services.Resolver
	Catalog  *services.Catalog
}

// NewServices wires the domain services onto one connection factory.
func NewServices(db database.Connector, clock *utils.Clock, log *zap.Logger) *Services {
	return &Services{
		Recorder: &services.Recorder{DB: db, Clock: clock, Logger: log},
		Resolver: &services.Resolver{DB: db, Clock: clock, Logger: log},
		Catalog:  &services.Catalog{DB: db, Clock: clock, Logger: log},
	}
}

// New builds the fiber application with every route mounted.
func New(d Deps, svc *Services) *fiber.App {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return middleware.JsonResponse(c, fe.Code, false, fe.Message, nil)
			}
			log.Error("unhandled request error", zap.String("path", c.Path()), zap.Error(err))
			return middleware.ErrorResponse(c, err)
		},
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: d.Config.CorsOrigins,
		AllowMethods: "GET,POST,PUT,DELETE",        // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency} ${locals:requestid}\n",
	}))

	jwtKey := []byte(d.Config.JWTKey)

	health := &healthController.Controller{}
	if d.DB != nil {
		health.DB = d.DB
	}
	healthRoutes.SetupHealthRoutes(app, health)
	submissionRoutes.SetupSubmissionRoutes(app, &submissionController.Controller{
		Recorder: svc.Recorder,
		Resolver: svc.Resolver,
		Clock:    d.Clock,
	})
	catalogRoutes.SetupCatalogRoutes(app, &catalogController.Controller{Catalog: svc.Catalog}, middleware.JWTMiddleware(jwtKey))
	authRoutes.SetupAuthRoutes(app, &authController.Controller{
		Auth:       d.Auth,
		JWTKey:     jwtKey,
		SessionTTL: d.Config.SessionTTL,
		Logger:     log,
	})

	// Serve static files from the public folder
	if info, err := os.Stat(d.Config.PublicDir); err == nil && info.IsDir() {
		app.Static("/", d.Config.PublicDir)
	}

	return app
}
