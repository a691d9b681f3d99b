package handlers

import (
	"vitalis/internal/models"
	"vitalis/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OutcomeHandler ingests interaction outcomes from the notification layer.
// This is the learning path's only write-side input.
type OutcomeHandler struct {
	outcomes *services.OutcomeService
}

// NewOutcomeHandler creates a new outcome handler
func NewOutcomeHandler(outcomes *services.OutcomeService) *OutcomeHandler {
	return &OutcomeHandler{outcomes: outcomes}
}

// Record stores one delivered-interaction outcome
// POST /api/interactions (service-only)
func (h *OutcomeHandler) Record(c *fiber.Ctx) error {
	var outcome models.InteractionOutcome
	if err := c.BodyParser(&outcome); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if outcome.UserID == "" || outcome.EngagementType == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "user_id and engagement_type are required",
		})
	}
	switch outcome.EngagementType {
	case models.EngagementOpened, models.EngagementClicked, models.EngagementActioned,
		models.EngagementDismissed, models.EngagementIgnored:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid engagement_type",
		})
	}

	if err := h.outcomes.Record(c.Context(), &outcome); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to record interaction outcome",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true})
}
