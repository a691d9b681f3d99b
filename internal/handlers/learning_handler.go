package handlers

import (
	"log"

	"vitalis/internal/learning"

	"github.com/gofiber/fiber/v2"
)

// LearningHandler exposes the learning path to service callers
type LearningHandler struct {
	learning *learning.Service
}

// NewLearningHandler creates a new learning handler
func NewLearningHandler(learningService *learning.Service) *LearningHandler {
	return &LearningHandler{learning: learningService}
}

type learningRunRequest struct {
	Mode   string `json:"mode"` // "single" or "batch"
	UserID string `json:"userId,omitempty"`
}

// Run executes a learning run
// POST /api/learning/run (service-only)
func (h *LearningHandler) Run(c *fiber.Ctx) error {
	var req learningRunRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	switch req.Mode {
	case "single":
		if req.UserID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "userId is required for single mode",
			})
		}
		if err := h.learning.RunUser(c.Context(), req.UserID); err != nil {
			log.Printf("❌ [LEARNING] Single run failed for user %s: %v", req.UserID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Learning run failed",
			})
		}
		return c.JSON(fiber.Map{"success": true})

	case "batch":
		results, err := h.learning.RunBatch(c.Context())
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Learning batch failed to start",
			})
		}
		return c.JSON(fiber.Map{
			"success": true,
			"results": results,
		})
	}

	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": "mode must be 'single' or 'batch'",
	})
}
