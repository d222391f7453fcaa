// Package setting provides the flat key/value store backing settings pages.
// Each setting is addressed by a unique key and carries a nullable string
// value. Reads hand out a Record, a handle that tracks the last-loaded
// ("original") value so dirty status is derivable between load and save.
package setting

import (
	"errors"

	"gorm.io/gorm"

	"github.com/SettingsForge/SettingsForge/internal/db/models"
)

const (
	keyQueryPattern = "key = ?"
)

var (
	// ErrSettingKeyEmpty is returned when a setting is addressed with an empty key.
	ErrSettingKeyEmpty = errors.New("setting key cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrRecordNil is returned when a nil record is passed to Save.
	ErrRecordNil = errors.New("setting record is nil")
)

// Record is a handle on one setting row. It remembers whether the row
// existed at load time and what its value was, so IsDirty and Original stay
// derivable until the next Save.
type Record struct {
	row      models.Setting
	exists   bool
	original *string
}

// Key returns the setting key this record is bound to.
func (r *Record) Key() string {
	return r.row.Key
}

// Value returns the current in-memory value.
func (r *Record) Value() *string {
	return r.row.Value
}

// SetValue assigns a new in-memory value. Nothing is persisted until Save.
func (r *Record) SetValue(v *string) {
	r.row.Value = v
}

// Original returns the value as last loaded from (or flushed to) storage.
func (r *Record) Original() *string {
	return r.original
}

// Exists reports whether a persisted row backed this record at load time.
func (r *Record) Exists() bool {
	return r.exists
}

// IsDirty reports whether the in-memory value differs from the original.
func (r *Record) IsDirty() bool {
	if r.row.Value == nil && r.original == nil {
		return false
	}
	if r.row.Value == nil || r.original == nil {
		return true
	}

	return *r.row.Value != *r.original
}

// FindOrNew retrieves the setting for key, or returns a transient unsaved
// Record with a nil value when no row exists. The unknown-key case is not an
// error: settings are created lazily on first write.
func FindOrNew(db *gorm.DB, key string) (*Record, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if key == "" {
		return nil, ErrSettingKeyEmpty
	}

	var row models.Setting
	result := db.Where(keyQueryPattern, key).First(&row)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return &Record{row: models.Setting{Key: key}}, nil
		}
		return nil, result.Error
	}

	return &Record{row: row, exists: true, original: row.Value}, nil
}

// FindByKey retrieves the setting for key, or nil if no row exists.
func FindByKey(db *gorm.DB, key string) (*Record, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if key == "" {
		return nil, ErrSettingKeyEmpty
	}

	var row models.Setting
	result := db.Where(keyQueryPattern, key).First(&row)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}

	return &Record{row: row, exists: true, original: row.Value}, nil
}

// Save persists the record, creating the row if it does not exist yet.
// On success the record's original value and existence flag are refreshed,
// so a following IsDirty reports false.
func Save(db *gorm.DB, r *Record) error {
	if db == nil {
		return ErrDBNil
	}
	if r == nil {
		return ErrRecordNil
	}
	if r.row.Key == "" {
		return ErrSettingKeyEmpty
	}

	var result *gorm.DB
	if r.exists {
		result = db.Save(&r.row)
	} else {
		result = db.Create(&r.row)
	}

	if result.Error != nil {
		return result.Error
	}

	r.exists = true
	r.original = r.row.Value

	return nil
}

// GetAll retrieves all persisted settings rows.
func GetAll(db *gorm.DB) ([]models.Setting, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var rows []models.Setting
	result := db.Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	return rows, nil
}
