package middleware

import (
	"crypto/subtle"
	"log"

	"vitalis/pkg/auth"

	"github.com/gofiber/fiber/v2"
)

// ServiceKeyHeader carries the shared secret on internal service calls
const ServiceKeyHeader = "X-Service-Key"

// ServiceKeyMiddleware authenticates internal/service callers with a shared
// secret. Service callers may act on any user (e.g. batch triggers), which
// is why this gate is separate from end-user JWT auth.
func ServiceKeyMiddleware(serviceKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if serviceKey == "" {
			log.Println("❌ Service key not configured; rejecting service call")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "Service authentication unavailable",
			})
		}

		provided := c.Get(ServiceKeyHeader)
		if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(serviceKey)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid service key",
			})
		}

		c.Locals("service_caller", true)
		return c.Next()
	}
}

// UserOrServiceAuth accepts either a service key or an end-user JWT on
// routes shared by both caller kinds (the trigger endpoint). A present
// X-Service-Key header commits the request to the service path.
func UserOrServiceAuth(jwtAuth *auth.LocalJWTAuth, serviceKey string) fiber.Handler {
	serviceGate := ServiceKeyMiddleware(serviceKey)
	userGate := LocalAuthMiddleware(jwtAuth)

	return func(c *fiber.Ctx) error {
		if c.Get(ServiceKeyHeader) != "" {
			return serviceGate(c)
		}
		return userGate(c)
	}
}

// IsServiceCaller reports whether the request passed the service-key gate
func IsServiceCaller(c *fiber.Ctx) bool {
	v, _ := c.Locals("service_caller").(bool)
	return v
}
