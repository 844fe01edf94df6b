package scanning

import (
	"log/slog"

	"discmerge/src/features/config"

	"github.com/gofiber/fiber/v2"
)

// Handler handles HTTP requests for the scanning feature.
type Handler struct {
	scanner *Scanner
	config  *config.Manager
}

// NewHandler creates a new scanning handler.
func NewHandler(scanner *Scanner, cfg *config.Manager) *Handler {
	return &Handler{scanner: scanner, config: cfg}
}

// Scan runs a dry scan and reports what a batch run would pick up. Nothing
// on disk is touched.
func (h *Handler) Scan(c *fiber.Ctx) error {
	type ScanRequest struct {
		Root string `json:"root"`
	}
	var req ScanRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "cannot parse request body",
			})
		}
	}
	root := req.Root
	if root == "" {
		root = h.config.Get().RootPath
	}

	units, stats, err := h.scanner.Scan(c.Context(), root)
	if err != nil {
		slog.Error("Scan failed", "root", root, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if units == nil {
		units = []Unit{}
	}
	return c.JSON(fiber.Map{"units": units, "stats": stats})
}
