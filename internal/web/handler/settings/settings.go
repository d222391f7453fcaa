// Package settings provides the HTTP surface of the settings pipeline:
// reading a page's resolved fields, submitting updates and clearing asset
// fields.
package settings

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/SettingsForge/SettingsForge/internal/auth"
	"github.com/SettingsForge/SettingsForge/internal/blob"
	"github.com/SettingsForge/SettingsForge/internal/config"
	"github.com/SettingsForge/SettingsForge/internal/db/models"
	settingscore "github.com/SettingsForge/SettingsForge/internal/settings"
	"github.com/SettingsForge/SettingsForge/internal/web/handler"
	"github.com/SettingsForge/SettingsForge/internal/web/session"
)

const (
	// Path is the base path of the settings endpoints.
	Path = "/settings"
)

// Service is the settings handler service.
type Service struct {
	handler.Service
	cfg  *config.Config
	db   *gorm.DB
	auth *auth.Service
	core *settingscore.Service
}

// Handler is the settings handler.
var Handler = Service{}

// Init initializes the settings handler.
func (s *Service) Init(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authService *auth.Service,
	core *settingscore.Service,
) error {
	if app == nil || cfg == nil || db == nil || authService == nil || core == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg
	s.db = db
	s.auth = authService
	s.core = core

	app.Get(Path, s.Get)
	app.Post(Path, s.Post)
	app.Delete(Path+"/:page/:field", s.Delete)

	return nil
}

// Get returns the resolved panels and fields of a settings page.
func (s *Service) Get(c *fiber.Ctx) error {
	user, ok := s.currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	gate := auth.NewGate(s.auth, user.ID)
	page := c.Query("path", s.cfg.Settings.DefaultPage)

	result, err := s.core.ResolveForRead(gate, page)
	if err != nil {
		if errors.Is(err, settingscore.ErrUnauthorized) {
			return unauthorized(c)
		}

		log.Error().Err(err).Str("page", page).Msg("failed to resolve settings page")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(fiber.Map{
		"panels": result.Panels,
		"fields": result.Fields,
		"authorizations": fiber.Map{
			"authorizedToView":   true,
			"authorizedToUpdate": gate.CanUpdate(),
		},
	})
}

// Post validates and persists a field-keyed settings payload.
func (s *Service) Post(c *fiber.Ctx) error {
	user, ok := s.currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	gate := auth.NewGate(s.auth, user.ID)
	page := c.Query("path", s.cfg.Settings.DefaultPage)

	payload := make(map[string]any)
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &payload); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
	}

	changes, err := s.core.Update(gate, &settingscore.Request{
		Page:   page,
		Values: payload,
		Actor:  user.Username,
	})
	if err != nil {
		var verr *settingscore.ValidationError

		switch {
		case errors.Is(err, settingscore.ErrUnauthorized):
			return unauthorized(c)
		case errors.As(err, &verr):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"errors": verr.Fields})
		default:
			log.Error().Err(err).Str("page", page).Msg("settings update failed")

			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
		}
	}

	log.Info().
		Str("page", page).
		Str("actor", user.Username).
		Int("changed_fields", len(changes.Changes)).
		Msg("settings updated")

	if s.cfg.Settings.ReloadOnSave {
		return c.JSON(fiber.Map{"reload": true})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Delete clears one settings field, removing its blob when it is an asset.
func (s *Service) Delete(c *fiber.Ctx) error {
	user, ok := s.currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	gate := auth.NewGate(s.auth, user.ID)
	page := c.Params("page")
	field := c.Params("field")

	_, err := s.core.ClearField(c.Context(), gate, page, field, user.Username)
	if err != nil {
		var serr *blob.StorageError

		switch {
		case errors.Is(err, settingscore.ErrUnauthorized):
			return unauthorized(c)
		case errors.As(err, &serr):
			log.Error().Err(err).Str("field", field).Msg("asset deletion failed")

			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "asset deletion failed"})
		default:
			log.Error().Err(err).Str("field", field).Msg("settings clear failed")

			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
		}
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// currentUser resolves the requesting user from the session cookie.
func (s *Service) currentUser(c *fiber.Ctx) (models.User, bool) {
	sessionID := c.Cookies("session")
	if sessionID == "" {
		return models.User{}, false
	}

	sessionData := new(session.Data)
	if err := sessionData.Read(sessionID); err != nil {
		return models.User{}, false
	}

	if sessionData.User.ID == 0 {
		return models.User{}, false
	}

	return sessionData.User, true
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Unauthorized"})
}
