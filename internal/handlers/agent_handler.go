package handlers

import (
	"log"

	"vitalis/internal/agent"
	"vitalis/internal/middleware"
	"vitalis/internal/models"
	"vitalis/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AgentHandler exposes the decision path and agent read APIs
type AgentHandler struct {
	engine    *agent.Engine
	actionLog *services.ActionLogService
	memory    *services.MemoryService
}

// NewAgentHandler creates a new agent handler
func NewAgentHandler(engine *agent.Engine, actionLog *services.ActionLogService, memory *services.MemoryService) *AgentHandler {
	return &AgentHandler{
		engine:    engine,
		actionLog: actionLog,
		memory:    memory,
	}
}

// Trigger runs one decision invocation
// POST /api/agent/trigger
func (h *AgentHandler) Trigger(c *fiber.Ctx) error {
	var req models.TriggerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if !models.ValidTriggerType(req.TriggerType) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid trigger type",
		})
	}

	// Service callers may target any user; end-user callers always act on
	// themselves, whatever the body says.
	userID := req.UserID
	if !middleware.IsServiceCaller(c) {
		authedID, _ := c.Locals("user_id").(string)
		if authedID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}
		userID = authedID
	}
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "userId is required for service calls",
		})
	}

	response, err := h.engine.RunTrigger(c.Context(), userID, req.TriggerType, req.TriggerPayload)
	if err != nil {
		log.Printf("❌ [AGENT] Trigger failed for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Agent invocation failed",
		})
	}

	return c.JSON(response)
}

// Actions returns the user's recent agent activity
// GET /api/agent/actions
func (h *AgentHandler) Actions(c *fiber.Ctx) error {
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

	entries, err := h.actionLog.RecentTail(c.Context(), userID, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load agent actions",
		})
	}

	return c.JSON(fiber.Map{"actions": entries})
}

// Memory returns the user's learned memory facts (diagnostics view)
// GET /api/agent/memory
func (h *AgentHandler) Memory(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	facts, err := h.memory.AllFacts(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load memory facts",
		})
	}

	return c.JSON(fiber.Map{"facts": facts})
}
