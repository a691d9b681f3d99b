package handlers

import (
	"context"
	"time"

	"vitalis/internal/database"
	"vitalis/internal/services"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	db    *database.DB
	mongo *database.MongoDB
	redis *services.RedisService
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *database.DB, mongo *database.MongoDB, redis *services.RedisService) *HealthHandler {
	return &HealthHandler{db: db, mongo: mongo, redis: redis}
}

// Handle responds with server health status, probing each dependency
func (h *HealthHandler) Handle(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
	defer cancel()

	deps := fiber.Map{
		"mysql":   probe(h.db.PingContext(ctx)),
		"mongodb": probe(h.mongo.Ping(ctx)),
		"redis":   probe(h.redis.Ping(ctx)),
	}

	status := "healthy"
	code := fiber.StatusOK
	for _, v := range deps {
		if v != "ok" {
			status = "degraded"
			code = fiber.StatusServiceUnavailable
		}
	}

	return c.Status(code).JSON(fiber.Map{
		"status":       status,
		"dependencies": deps,
		"timestamp":    time.Now().Format(time.RFC3339),
	})
}

func probe(err error) string {
	if err != nil {
		return err.Error()
	}
	return "ok"
}
