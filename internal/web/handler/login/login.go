// Package login provides the JSON login endpoint establishing a session.
package login

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/SettingsForge/SettingsForge/internal/auth"
	"github.com/SettingsForge/SettingsForge/internal/config"
	"github.com/SettingsForge/SettingsForge/internal/web/handler"
	"github.com/SettingsForge/SettingsForge/internal/web/session"
)

const (
	// Path is the path to the login endpoint.
	Path = "/login"
)

// Service is the login handler service.
type Service struct {
	handler.Service
	cfg   *config.Config
	local *auth.LocalProvider
}

// Credentials is the expected login request body.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Handler is the login handler.
var Handler = Service{}

// Init initializes the login handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg
	s.local = auth.NewLocalProvider(db)

	app.Post(Path, s.Post)

	return nil
}

// Post handles the login request and sets the session cookie.
func (s *Service) Post(c *fiber.Ctx) error {
	creds := new(Credentials)
	if err := c.BodyParser(creds); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	user, err := s.local.Authenticate(creds.Username, creds.Password)
	if err != nil {
		log.Warn().Err(err).Str("username", creds.Username).Msg("login failed")
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid username or password"})
	}

	sessionID := session.GenerateSessionID()

	userSession := &session.Data{User: *user}
	if err = userSession.Write(sessionID, s.cfg.Webserver.Session.ExpiryTime); err != nil {
		log.Error().Err(err).Msg("failed to write session")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	cookieSettings := &fiber.Cookie{
		Name:     "session",
		Value:    sessionID,
		MaxAge:   int(s.cfg.Webserver.Session.ExpiryTime.Seconds()),
		Secure:   true,
		HTTPOnly: true,
		SameSite: "Lax",
	}

	if s.cfg.DevMode {
		cookieSettings.Secure = false
	}

	c.Cookie(cookieSettings)

	return c.JSON(fiber.Map{
		"id":       user.ID,
		"username": user.Username,
	})
}
