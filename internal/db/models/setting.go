// Package models contains database model definitions.
package models

import "time"

// Setting represents one persisted settings value, keyed by the field
// attribute it binds to. The value is an opaque serialized payload; its
// semantic type (text, boolean, list, file reference) is owned by the field
// schema, not by the store. A nil value is equivalent to "not set" and is
// also the end state of asset-removal flows; rows are never deleted.
type Setting struct {
	// ID is the unique identifier for the setting row.
	ID uint64 `gorm:"primaryKey"`
	// Key is the attribute this setting binds to. Immutable once created.
	Key string `gorm:"unique;size:191;not null"`
	// Value is the serialized payload. Nullable: absence of a value and
	// absence of a row are equivalent.
	Value *string `gorm:"type:text"`
	// CreatedAt is the timestamp when the setting was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the setting was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Setting model.
// This overrides GORM's default pluralized table naming.
func (Setting) TableName() string {
	return "settings"
}
