package history

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// Handler handles HTTP requests for the history feature.
type Handler struct {
	service *Service
}

// NewHandler creates a new history handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ListEntries returns the most recent merge outcomes.
func (h *Handler) ListEntries(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 100)
	entries, err := h.service.List(c.Context(), limit)
	if err != nil {
		slog.Error("Failed to list merge history", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load history"})
	}
	if entries == nil {
		entries = []Entry{}
	}
	return c.JSON(entries)
}

// GetSummary returns aggregate outcome counts.
func (h *Handler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.service.Summarize(c.Context())
	if err != nil {
		slog.Error("Failed to summarize merge history", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load summary"})
	}
	return c.JSON(summary)
}

// ClearEntries deletes all recorded outcomes.
func (h *Handler) ClearEntries(c *fiber.Ctx) error {
	if err := h.service.Clear(c.Context()); err != nil {
		slog.Error("Failed to clear merge history", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to clear history"})
	}
	return c.JSON(fiber.Map{"status": "cleared"})
}
