package config

import (
	"time"

	"github.com/SettingsForge/SettingsForge/internal/logger"
)

// Session settings.
type Session struct {
	ExpiryTime time.Duration
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	Settings  Settings
	Blob      Blob
}

// Webserver implement webserver settings.
type Webserver struct {
	Domain       string  // domain name for the webserver
	Port         int     // listening port for the webserver
	ShutDownTime int     // wait time for shutdown
	URL          string  // base url for the webserver
	Session      Session // session settings
}

// Settings configures the settings pipeline behavior.
type Settings struct {
	// DefaultPage is the page resolved when a request omits the path
	// parameter. Defaults to "general".
	DefaultPage string
	// ReloadOnSave switches the update success response from 204 to a
	// JSON body asking the client to reload.
	ReloadOnSave bool `toml:"reloadOnSave"`
}

// Blob configures the S3-compatible blob store asset fields reference.
type Blob struct {
	Region   string
	Endpoint string // non-empty enables path-style addressing (MinIO and similar)
	// Disks maps a field's storage disk name to an S3 bucket.
	Disks map[string]string
}
