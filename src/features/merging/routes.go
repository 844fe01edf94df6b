package merging

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the routes for the merging feature.
func RegisterRoutes(app *fiber.App, service *Service) {
	handler := NewHandler(service)

	app.Post("/merge/batch", handler.StartBatch)
}
