package middleware

import (
	"log"

	"vitalis/internal/services"

	"github.com/gofiber/fiber/v2"
)

// EnsureUserProfile upserts a minimal user profile on authenticated requests
// so downstream services always find a user document. Upsert failure is not
// fatal to the request; reads against a missing profile fail loudly anyway.
func EnsureUserProfile(users *services.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		if userID == "" {
			return c.Next()
		}

		email, _ := c.Locals("user_email").(string)
		if _, err := users.EnsureUser(c.Context(), userID, email, ""); err != nil {
			log.Printf("⚠️ Failed to ensure user profile for %s: %v", userID, err)
		}

		return c.Next()
	}
}
