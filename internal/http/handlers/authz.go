package handlers

import (
	"github.com/gofiber/fiber/v2"

	"ecomart/internal/domain"
	applog "ecomart/internal/log"
	"ecomart/internal/services"
)

// RequireRole authenticates the sid cookie and enforces the given role. The
// resolved user lands in c.Locals("user").
func RequireRole(auth *services.AuthService, role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies("sid")
		if sid == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Authentication required"})
		}
		u, err := auth.CurrentUser(sid)
		if err != nil || u == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Authentication required"})
		}
		if role != "" && u.Role != role {
			applog.Security(c, "access.denied.role", map[string]any{"want": role, "have": u.Role})
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Access denied"})
		}
		c.Locals("user", u)
		c.Locals("user_id", u.ID)
		return c.Next()
	}
}

// RequireAuth admits any logged-in user regardless of role.
func RequireAuth(auth *services.AuthService) fiber.Handler {
	return RequireRole(auth, "")
}

func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("user").(*domain.User)
	return u
}
