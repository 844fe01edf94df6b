package scanning

import (
	"discmerge/src/features/config"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the routes for the scanning feature.
func RegisterRoutes(app *fiber.App, scanner *Scanner, cfg *config.Manager) {
	handler := NewHandler(scanner, cfg)

	app.Post("/scan", handler.Scan)
}
