package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Khalick/student-portal-api/internal/config"
	"github.com/Khalick/student-portal-api/internal/handler"
	"github.com/Khalick/student-portal-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	StudentHandler        *handler.StudentHandler
	AllocationHandler     *handler.AllocationHandler
	DocumentHandler       *handler.DocumentHandler
	LegacyDocumentHandler *handler.LegacyDocumentHandler
	JWTMiddleware         fiber.Handler
	AdminMiddleware       fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	// Locally stored blobs are served back under the upload base URL.
	if cfg.UploadDir != "" {
		app.Static(cfg.UploadBaseURL, cfg.UploadDir)
	}

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}
	adminMiddleware := deps.AdminMiddleware
	if adminMiddleware == nil {
		adminMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Allocation routes carry static suffixes after the registration-number
	// segments, so they must be registered before the bare student lookup
	// routes or the three-segment lookup would swallow them.
	if deps.AllocationHandler != nil {
		students := app.Group("/students", jwtMiddleware)
		deps.AllocationHandler.RegisterStudentRoutes(students)

		allocations := app.Group("/allocated-units", jwtMiddleware, adminMiddleware)
		deps.AllocationHandler.RegisterAllocationRoutes(allocations)

		units := app.Group("/units", jwtMiddleware)
		deps.AllocationHandler.RegisterUnitRoutes(units, adminMiddleware)
	}

	if deps.StudentHandler != nil {
		students := app.Group("/students", jwtMiddleware)
		deps.StudentHandler.Register(students, adminMiddleware)

		fees := app.Group("/fees", jwtMiddleware, adminMiddleware)
		deps.StudentHandler.RegisterFees(fees)
	}

	if deps.DocumentHandler != nil {
		documents := app.Group("/documents", jwtMiddleware)
		deps.DocumentHandler.Register(documents)
	}

	if deps.LegacyDocumentHandler != nil {
		deps.LegacyDocumentHandler.Register(app.Group("", jwtMiddleware))
	}
}
