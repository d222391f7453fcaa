// Package logout provides the endpoint clearing a user session.
package logout

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/SettingsForge/SettingsForge/internal/config"
	"github.com/SettingsForge/SettingsForge/internal/web/handler"
	"github.com/SettingsForge/SettingsForge/internal/web/session"
)

// Service is the logout handler service.
type Service struct {
	handler.Service
	cfg *config.Config
}

// Handler is the logout handler.
var Handler = Service{}

// Init initializes the logout handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config) {
	if app == nil || cfg == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg

	app.Get(handler.RootPath+"logout", s.Logout)
	app.Post(handler.RootPath+"logout", s.Logout)
}

// Logout handles user logout by clearing the session.
func (s *Service) Logout(c *fiber.Ctx) error {
	// Get session cookie
	sessionID := c.Cookies("session")
	if sessionID != "" {
		// Delete session from store
		if err := session.Store.Storage.Delete(sessionID); err != nil {
			log.Error().Err(err).Msg("failed to delete session")
		}
	}

	// Clear the session cookie
	c.Cookie(&fiber.Cookie{
		Name:     "session",
		Value:    "",
		MaxAge:   -1,
		Secure:   true,
		HTTPOnly: true,
		SameSite: "Lax",
	})

	return c.SendStatus(fiber.StatusNoContent)
}
