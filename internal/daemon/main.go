// Package daemon assembles the application: database, schema registry,
// blob store, settings pipeline and web service.
package daemon

import (
	"context"
	"fmt"

	"github.com/gofiber/storage"
	sessionmysql "github.com/gofiber/storage/mysql"
	sessionpostgres "github.com/gofiber/storage/postgres"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/SettingsForge/SettingsForge/internal/blob"
	"github.com/SettingsForge/SettingsForge/internal/config"
	settingctl "github.com/SettingsForge/SettingsForge/internal/db/controller/setting"
	"github.com/SettingsForge/SettingsForge/internal/db/dsn"
	"github.com/SettingsForge/SettingsForge/internal/db/models"
	"github.com/SettingsForge/SettingsForge/internal/schema"
	"github.com/SettingsForge/SettingsForge/internal/settings"
	"github.com/SettingsForge/SettingsForge/internal/web"
	"github.com/SettingsForge/SettingsForge/internal/web/session"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
}

// Start starts the Daemon's web service and arms the graceful shutdown
// handler.
func (d *Daemon) Start() error {
	go d.webService.WaitShutdown()

	return d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) *Daemon {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil
	}

	db, err := openDatabase(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("can not connect database")
		return nil
	}

	if err = db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.RolePermission{},
		&models.Setting{},
		&models.SettingChange{},
	); err != nil {
		log.Fatal().Err(err).Msg("can not migrate database")
		return nil
	}

	seed(cfg, db)

	session.Init(newSessionStorage(cfg))

	registry := schema.NewRegistry()
	registerDefaultPages(registry)

	blobs := newBlobStore(cfg)

	core := settings.New(db, registry, blobs, settings.Hooks{
		AfterUpdated: changeHistoryHook(db),
	})

	return &Daemon{
		cfg:        cfg,
		webService: web.New(cfg, db, core),
	}
}

// openDatabase connects gorm with the engine selected in the config.
func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector

	if cfg.DB.GormEngine == "postgres" {
		dialector = gormpostgres.Open(dsn.Create(cfg))
	} else {
		dialector = gormmysql.Open(dsn.Create(cfg))
	}

	return gorm.Open(dialector, &gorm.Config{}) //nolint:wrapcheck
}

// newSessionStorage creates the fiber session store backing table.
func newSessionStorage(cfg *config.Config) storage.Storage {
	if cfg.DB.GormEngine == "postgres" {
		return sessionpostgres.New(sessionpostgres.Config{
			Host:     cfg.DB.Host,
			Port:     cfg.DB.Port,
			Username: cfg.DB.User,
			Password: cfg.DB.Password,
			Database: cfg.DB.Name,
			Table:    "sessions",
		})
	}

	return sessionmysql.New(sessionmysql.Config{
		ConnectionURI: dsn.Create(cfg),
		Table:         "sessions",
	})
}

// newBlobStore builds the S3 blob store when disks are configured.
// Without disks asset clearing degrades to value-only behavior.
func newBlobStore(cfg *config.Config) blob.Store {
	if len(cfg.Blob.Disks) == 0 {
		return nil
	}

	store, err := blob.NewS3Store(context.Background(), cfg.Blob.Region, cfg.Blob.Endpoint, cfg.Blob.Disks)
	if err != nil {
		log.Fatal().Err(err).Msg("can not create blob store")
		return nil
	}

	return store
}

// changeHistoryHook persists every applied change as an audit row.
// Persistence failures are logged and never fail the originating update.
func changeHistoryHook(db *gorm.DB) func(*settings.Request, *settings.ChangeSet) *settings.ChangeSet {
	return func(req *settings.Request, cs *settings.ChangeSet) *settings.ChangeSet {
		if cs == nil || len(cs.Changes) == 0 {
			return nil
		}

		rows := make([]models.SettingChange, 0, len(cs.Changes))
		for _, c := range cs.Changes {
			rows = append(rows, models.SettingChange{
				Page:      cs.Page,
				Attribute: c.Attribute,
				Before:    c.Before,
				After:     c.After,
				IsCreate:  c.IsCreate,
				Actor:     req.Actor,
			})
		}

		if err := settingctl.RecordChanges(db, rows); err != nil {
			log.Warn().Err(err).Str("page", cs.Page).Msg("can not record setting changes")
		}

		return nil
	}
}
