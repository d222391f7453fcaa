// Package web wires the Fiber application: middleware, handlers and the
// service lifecycle.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/SettingsForge/SettingsForge/internal/auth"
	"github.com/SettingsForge/SettingsForge/internal/config"
	fiberlogger "github.com/SettingsForge/SettingsForge/internal/logger/adapter/fiber"
	settingscore "github.com/SettingsForge/SettingsForge/internal/settings"
	"github.com/SettingsForge/SettingsForge/internal/web/handler/login"
	"github.com/SettingsForge/SettingsForge/internal/web/handler/logout"
	settingshandler "github.com/SettingsForge/SettingsForge/internal/web/handler/settings"
	authmiddleware "github.com/SettingsForge/SettingsForge/internal/web/middleware/auth"
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	db           *gorm.DB
	authService  *auth.Service
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for graceful shutdown of the web service.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	// stop fiber http server
	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		err := s.App.Shutdown()
		if err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

// New creates a new web service with the given configuration, database and
// settings pipeline.
func New(cfg *config.Config, db *gorm.DB, core *settingscore.Service) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if db == nil {
		panic("db cannot be nil")
	}

	if core == nil {
		panic("settings service cannot be nil")
	}

	// create fiber app
	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        "SettingsForge",
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
		},
	)

	// a handler panic must take down the request, not the process
	app.Use(recover.New())

	// access logging
	app.Use(fiberlogger.New(fiberlogger.Config{
		Config:        cfg.Log,
		CheckAliveURI: "/checkalive",
	}))

	// session auth middleware
	app.Use(authmiddleware.Middleware)

	// Initialize auth service
	authService := auth.NewService(db)

	// init web service
	service := &Service{
		cfg:         cfg,
		App:         app,
		db:          db,
		authService: authService,
	}

	service.alive.Store(true)

	// liveness probe participating in the graceful shutdown drain window
	app.Get("/checkalive", func(c *fiber.Ctx) error {
		if !service.alive.Load() {
			return c.SendStatus(fiber.StatusServiceUnavailable)
		}

		return c.SendStatus(fiber.StatusOK)
	})

	// init handlers (they check capabilities per request)
	if err := login.Handler.Init(app, cfg, db); err != nil {
		log.Fatal().Err(err).Msg("failed to init login handler")
	}

	logout.Handler.Init(app, cfg)

	if err := settingshandler.Handler.Init(app, cfg, db, authService, core); err != nil {
		log.Fatal().Err(err).Msg("failed to init settings handler")
	}

	return service
}
