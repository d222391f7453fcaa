package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/SettingsForge/SettingsForge/internal/web/handler/login"
	"github.com/SettingsForge/SettingsForge/internal/web/session"
)

// openPaths are reachable without a session.
var openPaths = []string{login.Path, "/logout", "/checkalive"}

// Middleware is a Fiber middleware that checks for user authentication.
func Middleware(c *fiber.Ctx) error {
	originalURL := strings.ToLower(c.OriginalURL())
	for _, p := range openPaths {
		if strings.HasPrefix(originalURL, p) {
			return c.Next()
		}
	}

	// get session cookie
	loginCookie := c.Cookies("session")
	if loginCookie == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	// check session validity
	sessData := new(session.Data)
	if err := sessData.Read(loginCookie); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	if sessData.User.ID == 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	// Add the current user to locals for downstream handlers
	c.Locals("CurrentUser", sessData.User)

	return c.Next()
}
