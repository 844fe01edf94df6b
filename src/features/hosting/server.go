package hosting

import (
	"fmt"
	"log/slog"

	"discmerge/src/features/config"
	"discmerge/src/features/history"
	"discmerge/src/features/jobs"
	"discmerge/src/features/merging"
	"discmerge/src/features/metrics"
	"discmerge/src/features/scanning"

	"github.com/gofiber/fiber/v2"
)

// Server is the HTTP server for the application.
type Server struct {
	app  *fiber.App
	port uint32
}

// NewServer creates a new HTTP server.
func NewServer(cfg *config.Manager, scanner *scanning.Scanner, mergingService *merging.Service,
	jobService *jobs.Service, historyService *history.Service) *Server {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			slog.Error("Internal Server Error", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
		AppName:               "discmerge",
		DisableStartupMessage: true,
		EnablePrintRoutes:     cfg.Get().Server.PrintRoutes,
	})

	app.Use(LogAllRequestsMiddleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	scanning.RegisterRoutes(app, scanner, cfg)
	merging.RegisterRoutes(app, mergingService)
	jobs.RegisterRoutes(app, jobService)
	history.RegisterRoutes(app, historyService)
	config.RegisterRoutes(app, cfg)
	metrics.RegisterRoutes(app)

	return &Server{app: app, port: cfg.Get().Server.Port}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.app.Listen(":" + fmt.Sprint(s.port))
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
