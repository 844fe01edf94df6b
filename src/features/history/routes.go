package history

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the routes for the history feature.
func RegisterRoutes(app *fiber.App, service *Service) {
	handler := NewHandler(service)

	api := app.Group("/api/history")
	api.Get("/", handler.ListEntries)
	api.Get("/summary", handler.GetSummary)
	api.Delete("/", handler.ClearEntries)
}
