package middleware

import (
	"fmt"
	"log"
	"time"

	"vitalis/internal/services"

	"github.com/gofiber/fiber/v2"
)

// TriggerRateLimit limits decision-path triggers per user over a rolling
// window, backed by Redis so the limit holds across instances. Redis being
// down fails open: losing a rate limit is better than losing triggers.
func TriggerRateLimit(redis *services.RedisService, limit int64, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if redis == nil {
			return c.Next()
		}

		userID, _ := c.Locals("user_id").(string)
		if userID == "" {
			return c.Next()
		}

		key := fmt.Sprintf("ratelimit:trigger:%s", userID)
		_, exceeded, err := redis.CheckRateLimit(c.Context(), key, limit, window)
		if err != nil {
			log.Printf("⚠️ [RATELIMIT] Redis check failed, allowing request: %v", err)
			return c.Next()
		}
		if exceeded {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": fmt.Sprintf("Trigger rate limit exceeded (%d per %s)", limit, window),
			})
		}

		return c.Next()
	}
}
