// middleware/auth.go
package middleware

import (
	"strings"

	"sql-career-engine/logger"

	"github.com/gofiber/fiber/v2"
)

const (
	LocalUserID   = "user_id"
	LocalUsername = "username"
	LocalRegion   = "region"
	LocalRoles    = "user_roles"
)

// UserContextMiddleware extracts user identity and roles set by Gateway.
// Every route it guards needs X-User-ID.
func UserContextMiddleware(log *logger.Logger) fiber.Handler {
	log = log.With("middleware", "user_context")
	return func(c *fiber.Ctx) error {
		userID := strings.TrimSpace(c.Get("X-User-ID"))
		if userID == "" {
			log.Warn("X-User-ID required but missing", "path", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing X-User-ID, request must come through gateway with auth context",
			})
		}

		var roles []string
		for _, r := range strings.Split(c.Get("X-User-Roles"), ",") {
			if r = strings.TrimSpace(r); r != "" {
				roles = append(roles, r)
			}
		}

		c.Locals(LocalUserID, userID)
		c.Locals(LocalUsername, strings.TrimSpace(c.Get("X-Username")))
		c.Locals(LocalRegion, strings.TrimSpace(c.Get("X-User-Region")))
		c.Locals(LocalRoles, roles)

		log.Debug("user context", "user_id", userID, "roles", roles, "path", c.Path())
		return c.Next()
	}
}

// RequireRole rejects users without role. Must run after UserContextMiddleware.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		roles, _ := c.Locals(LocalRoles).([]string)
		for _, r := range roles {
			if r == role {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "forbidden",
			"cause": "role " + role + " required",
		})
	}
}

// UserID returns the caller set by UserContextMiddleware.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalUserID).(string)
	return id
}

func Username(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalUsername).(string)
	return s
}

func Region(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalRegion).(string)
	return s
}
