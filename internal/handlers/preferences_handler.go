package handlers

import (
	"vitalis/internal/models"
	"vitalis/internal/services"

	"github.com/gofiber/fiber/v2"
)

// PreferencesHandler handles agent preferences HTTP requests
type PreferencesHandler struct {
	prefs *services.PreferencesService
}

// NewPreferencesHandler creates a new preferences handler
func NewPreferencesHandler(prefs *services.PreferencesService) *PreferencesHandler {
	return &PreferencesHandler{prefs: prefs}
}

// Get retrieves the caller's agent preferences
// GET /api/agent/preferences
func (h *PreferencesHandler) Get(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	prefs, err := h.prefs.Get(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load agent preferences",
		})
	}

	return c.JSON(prefs)
}

// Update applies a partial update to the caller's agent preferences
// PUT /api/agent/preferences
func (h *PreferencesHandler) Update(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	var req models.UpdateAgentPreferencesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	prefs, err := h.prefs.Update(c.Context(), userID, &req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(prefs)
}
