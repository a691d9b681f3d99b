package handlers

import (
	"context"
	"log"
	"time"

	"vitalis/internal/agent"
	"vitalis/internal/models"
	"vitalis/internal/services"

	"github.com/gofiber/fiber/v2"
)

// VitalsHandler ingests vital readings and exposes the nudge feed
type VitalsHandler struct {
	health *services.HealthService
	nudges *services.NudgeService
	engine *agent.Engine
}

// NewVitalsHandler creates a new vitals handler
func NewVitalsHandler(health *services.HealthService, nudges *services.NudgeService, engine *agent.Engine) *VitalsHandler {
	return &VitalsHandler{
		health: health,
		nudges: nudges,
		engine: engine,
	}
}

func validMetricType(t string) bool {
	switch t {
	case models.MetricBloodPressure, models.MetricBloodSugar, models.MetricWeight,
		models.MetricPulse, models.MetricWater, models.MetricSleep:
		return true
	}
	return false
}

// Record stores one vital reading and kicks off a vital_logged decision pass
// POST /api/vitals
func (h *VitalsHandler) Record(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	var reading models.VitalReading
	if err := c.BodyParser(&reading); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if !validMetricType(reading.MetricType) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid metric_type",
		})
	}
	if reading.Value <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "value must be positive",
		})
	}

	reading.UserID = userID
	if reading.RecordedAt.IsZero() {
		reading.RecordedAt = time.Now().UTC()
	}

	if err := h.health.RecordVital(c.Context(), &reading); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to record vital",
		})
	}

	// The agent reacts asynchronously: the user's write must not wait on a
	// completion call.
	go func(r models.VitalReading) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		payload := map[string]any{
			"metric_type": r.MetricType,
			"value":       r.Value,
		}
		if r.Value2 != 0 {
			payload["value2"] = r.Value2
		}
		if _, err := h.engine.RunTrigger(ctx, r.UserID, models.TriggerVitalLogged, payload); err != nil {
			log.Printf("⚠️ [VITALS] vital_logged trigger failed for user %s: %v", r.UserID, err)
		}
	}(reading)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true})
}

// Nudges returns the user's recent nudges, newest first
// GET /api/nudges
func (h *VitalsHandler) Nudges(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}

	nudges, err := h.nudges.RecentNudges(c.Context(), userID, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load nudges",
		})
	}

	return c.JSON(fiber.Map{"nudges": nudges})
}
