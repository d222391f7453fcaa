package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/SettingsForge/SettingsForge/internal/web/session"
)

// RequirePermission creates Fiber middleware that requires a specific permission.
func RequirePermission(authService *Service, permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Get session cookie
		sessionID := c.Cookies("session")
		if sessionID == "" {
			log.Error().Msg("No session cookie found")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}

		// Read session data
		sessionData := new(session.Data)
		if err := sessionData.Read(sessionID); err != nil {
			log.Error().Err(err).Msg("Failed to read session")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}

		// Check if the session is valid
		if sessionData.User.ID == 0 {
			log.Error().Msg("Invalid session data")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}

		// Check if the user has permission
		hasPermission, err := authService.HasPermission(sessionData.User.ID, permission)
		if err != nil {
			log.Error().Err(err).Uint64("user_id", sessionData.User.ID).Str("permission", permission).
				Msg("Failed to check permission")

			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
		}

		if !hasPermission {
			log.Warn().Uint64("user_id", sessionData.User.ID).Str("permission", permission).
				Msg("User lacks required permission")

			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Unauthorized"})
		}

		// User has permission, proceed
		return c.Next()
	}
}
