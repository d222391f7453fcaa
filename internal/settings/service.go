// Package settings implements the settings resolution-and-update pipeline:
// merging stored values into a page's field schema for display, validating
// and selectively persisting submitted values, and emitting a change history
// through configurable before/after hooks.
package settings

import (
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/SettingsForge/SettingsForge/internal/blob"
	"github.com/SettingsForge/SettingsForge/internal/schema"
)

// Authorizer is the capability gate consulted before any read or write.
// Implementations are queried per call; capability changes take effect on
// the next request.
type Authorizer interface {
	CanView() bool
	CanUpdate() bool
}

// Request carries one settings operation through the pipeline and its hooks.
type Request struct {
	// Page is the settings page identifier the operation targets.
	Page string
	// Values is the submitted field-keyed payload (empty for clears).
	Values map[string]any
	// Actor is the username of the account performing the operation.
	Actor string
}

// Service wires the field schema provider, the value store, the blob store
// and the hook configuration into the settings pipeline. Construct once at
// startup; safe for concurrent use.
type Service struct {
	db       *gorm.DB
	provider schema.Provider
	blobs    blob.Store
	hooks    Hooks
	validate *validator.Validate
}

// New creates a settings service. The blob store may be nil when no asset
// fields are in use; hooks may be zero-valued for no-op behavior.
func New(db *gorm.DB, provider schema.Provider, blobs blob.Store, hooks Hooks) *Service {
	return &Service{
		db:       db,
		provider: provider,
		blobs:    blobs,
		hooks:    hooks,
		validate: validator.New(),
	}
}
