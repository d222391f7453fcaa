package models

import "time"

// SettingChange is one audit entry recording a persisted settings update.
// A row is written only for keys whose value actually changed and was
// successfully saved; no-op and failed writes leave no trace here.
type SettingChange struct {
	// ID is the unique identifier for the change entry.
	ID uint64 `gorm:"primaryKey"`
	// Page is the settings page the update was submitted against.
	Page string `gorm:"size:100;index"`
	// Attribute is the setting key that changed.
	Attribute string `gorm:"size:191;index;not null"`
	// Before is the value as last persisted prior to this change.
	Before *string `gorm:"type:text"`
	// After is the newly persisted value.
	After *string `gorm:"type:text"`
	// IsCreate is true when no row existed for the key before this change.
	IsCreate bool
	// Actor is the username of the account that submitted the update.
	Actor string `gorm:"size:100"`
	// CreatedAt is the timestamp when the change was recorded (managed by GORM).
	CreatedAt time.Time `gorm:"index"`
}

// TableName specifies the database table name for the SettingChange model.
// This overrides GORM's default pluralized table naming.
func (SettingChange) TableName() string {
	return "setting_changes"
}
