// server/server.go - Fiber application and route table
package server

import (
	"errors"
	"time"

	"shelleylegion/eventstatus"
	"shelleylegion/handlers"
	"shelleylegion/handlers/admin"
	"shelleylegion/middleware"
	"shelleylegion/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Deps is everything the HTTP layer needs.
type Deps struct {
	Store   *services.ContentStore
	Session *services.AdminSession
	Clock   eventstatus.Clock

	CORSOrigins string
	Production  bool
	// AccessLog enables the request logger.
	AccessLog bool

	// Nil limiters disable rate limiting.
	Limiter     *middleware.RateLimiter
	AuthLimiter *middleware.RateLimiter
}

// New builds the Fiber app with all routes registered.
func New(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler(d.Production),
		BodyLimit:    1 * 1024 * 1024, // 1MB
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	if d.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
		}))
	}

	corsOrigins := d.CORSOrigins
	if corsOrigins == "" {
		corsOrigins = "http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, If-Match",
		ExposeHeaders:    "ETag, X-Content-Fallback",
		AllowCredentials: corsOrigins != "*",
	}))

	app.Use(middleware.RateLimitMiddleware(d.Limiter))

	hasSecret := d.Session != nil
	content := handlers.NewContentHandler(d.Store, d.Clock)
	adminAuth := admin.NewAuthHandler(d.Session)
	adminContent := admin.NewContentHandler(d.Store, d.Clock, hasSecret)

	app.Get("/health", handlers.Health(d.Store.BackendName(), hasSecret))

	api := app.Group("/api")
	api.Get("/health", handlers.Health(d.Store.BackendName(), hasSecret))

	// Public content
	api.Get("/data/:name", content.GetData)

	// Admin routes
	adminGroup := api.Group("/admin")
	adminGroup.Post("/login", middleware.AuthRateLimitMiddleware(d.AuthLimiter), adminAuth.Login)
	adminGroup.Post("/logout", adminAuth.Logout)

	// Protected admin routes
	adminProtected := adminGroup.Group("", middleware.AdminAuthMiddleware(d.Session))
	adminProtected.Get("/verify", adminAuth.VerifyToken)
	adminProtected.Get("/debug", adminContent.Debug)
	adminProtected.Get("/data", adminContent.ListDocuments)
	adminProtected.Post("/data/schedule/refresh-statuses", adminContent.RefreshStatuses)
	adminProtected.Get("/data/:name", adminContent.GetDocument)
	adminProtected.Put("/data/:name", adminContent.PutDocument)
	adminProtected.Put("/data/:name/entries/:id", adminContent.PutEntry)
	adminProtected.Post("/data/:name/entries", adminContent.PutEntry)
	adminProtected.Delete("/data/:name/entries/:id", adminContent.DeleteEntry)

	return app
}

func errorHandler(production bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		var e *fiber.Error
		if errors.As(err, &e) {
			code = e.Code
			message = e.Message
		} else if !production {
			message = err.Error()
		}

		// Don't expose internal errors in production
		if production && code == fiber.StatusInternalServerError {
			message = "An error occurred. Please try again later."
		}

		return c.Status(code).JSON(fiber.Map{
			"success": false,
			"error":   message,
		})
	}
}
