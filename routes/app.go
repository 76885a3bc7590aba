package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/meinhoongagan/smart-clinic/controllers"
	"github.com/meinhoongagan/smart-clinic/middleware"
	"github.com/meinhoongagan/smart-clinic/services"
	"github.com/rs/zerolog"
)

// Handlers groups every HTTP controller the app mounts.
type Handlers struct {
	Auth           *controllers.AuthController
	Appointment    *controllers.AppointmentController
	Prescription   *controllers.PrescriptionController
	MedicalHistory *controllers.MedicalHistoryController
	File           *controllers.FileController
	Health         *controllers.HealthController
}

type Options struct {
	Tokens      *services.TokenService
	Handlers    Handlers
	Log         zerolog.Logger
	CORSOrigins string
	// BodyLimit caps request bodies, uploads included. Zero keeps fiber's default.
	BodyLimit int
}

// NewApp builds the fiber app with the middleware chain and every route.
func NewApp(o Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "smart-clinic",
		ErrorHandler:          controllers.ErrorHandler(o.Log),
		BodyLimit:             o.BodyLimit,
		DisableStartupMessage: true,
	})

	origins := o.CORSOrigins
	if origins == "" {
		origins = "*"
	}

	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(o.Log))
	app.Use(middleware.Recover(o.Log))
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.Guard(o.Tokens))

	h := o.Handlers
	SetupHealthRoutes(app, h.Health)

	api := app.Group("/api")
	SetupAuthRoutes(api, h.Auth)
	SetupAppointmentRoutes(api, h.Appointment)
	SetupPrescriptionRoutes(api, h.Prescription)
	SetupMedicalHistoryRoutes(api, h.MedicalHistory)
	SetupFileRoutes(api, h.File)
	return app
}

func SetupHealthRoutes(app fiber.Router, h *controllers.HealthController) {
	if h == nil {
		h = controllers.NewHealthController(nil)
	}
	app.Get("/health", h.Live)
	app.Get("/health/ready", h.Ready)
}
