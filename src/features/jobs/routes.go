package jobs

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the routes for the jobs feature.
func RegisterRoutes(app *fiber.App, service *Service) {
	handler := NewHandler(service)

	api := app.Group("/api/jobs")
	api.Get("/", handler.ListJobs)
	api.Get("/:id", handler.GetJob)
	api.Post("/:id/cancel", handler.CancelJob)
}
