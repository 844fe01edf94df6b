package jobs

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// Handler handles HTTP requests for the jobs feature.
type Handler struct {
	service *Service
}

// NewHandler creates a new jobs handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ListJobs returns all known jobs, newest first.
func (h *Handler) ListJobs(c *fiber.Ctx) error {
	return c.JSON(h.service.GetJobs())
}

// GetJob returns a single job by ID.
func (h *Handler) GetJob(c *fiber.Ctx) error {
	job, ok := h.service.GetJob(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "job not found"})
	}
	return c.JSON(job)
}

// CancelJob cancels a running or pending job.
func (h *Handler) CancelJob(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.CancelJob(id); err != nil {
		slog.Error("Failed to cancel job", "jobID", id, "error", err)
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	slog.Info("Job cancelled", "jobID", id)
	return c.JSON(fiber.Map{"status": "cancelled"})
}
