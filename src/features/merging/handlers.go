package merging

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// Handler is the handler for the merging feature.
type Handler struct {
	service *Service
}

// NewHandler creates a new handler for the merging feature.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// StartBatch is the handler for starting a batch merge job.
func (h *Handler) StartBatch(c *fiber.Ctx) error {
	type BatchRequest struct {
		Root string `json:"root"`
	}
	var req BatchRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "cannot parse request body",
			})
		}
	}
	jobID, err := h.service.StartBatch(c.Context(), req.Root)
	if err != nil {
		slog.Error("Error starting batch merge", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to start batch merge job",
		})
	}
	slog.Info("StartBatch: batch merge started", "jobID", jobID)
	return c.JSON(fiber.Map{"jobId": jobID})
}
