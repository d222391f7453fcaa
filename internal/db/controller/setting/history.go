package setting

import (
	"gorm.io/gorm"

	"github.com/SettingsForge/SettingsForge/internal/db/models"
)

// RecordChanges appends audit rows for a batch of persisted changes.
// The rows are written independently; a failure aborts the remainder.
func RecordChanges(db *gorm.DB, changes []models.SettingChange) error {
	if db == nil {
		return ErrDBNil
	}
	if len(changes) == 0 {
		return nil
	}

	return db.Create(&changes).Error
}

// HistoryForKey retrieves the recorded changes for one setting key, newest first.
func HistoryForKey(db *gorm.DB, key string, limit int) ([]models.SettingChange, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if key == "" {
		return nil, ErrSettingKeyEmpty
	}

	var rows []models.SettingChange
	query := db.Where("attribute = ?", key).Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	return rows, nil
}
