package daemon

import (
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SettingsForge/SettingsForge/internal/auth"
	"github.com/SettingsForge/SettingsForge/internal/config"
	"github.com/SettingsForge/SettingsForge/internal/db/models"
)

// seed provisions the baseline roles, permissions and the initial admin
// account. It is idempotent, existing rows are left untouched.
func seed(_ *config.Config, db *gorm.DB) {
	permissions := []models.Permission{
		{Name: auth.PermSettingsView, Resource: "settings", Action: "view", Description: "View settings pages"},
		{Name: auth.PermSettingsUpdate, Resource: "settings", Action: "update", Description: "Update and clear settings"},
		{Name: auth.PermAdminUsers, Resource: "admin", Action: "users", Description: "Manage user accounts"},
		{Name: auth.PermAdminRoles, Resource: "admin", Action: "roles", Description: "Manage roles and permissions"},
	}

	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&permissions).Error; err != nil {
		log.Error().Err(err).Msg("can not seed permissions")
	}

	roles := []models.Role{
		{Name: "admin", Description: "Full access", IsSystem: true},
		{Name: "viewer", Description: "Read-only settings access", IsSystem: true},
	}

	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&roles).Error; err != nil {
		log.Error().Err(err).Msg("can not seed roles")
	}

	grantAll(db, "admin")
	grant(db, "viewer", auth.PermSettingsView)

	var count int64

	db.Model(&models.User{}).Count(&count)
	if count == 0 {
		var adminRole models.Role
		if err := db.Where("name = ?", "admin").First(&adminRole).Error; err != nil {
			log.Error().Err(err).Msg("admin role missing, skipping admin user seed")
			return
		}

		// initial credentials, change after first login
		db.Create(
			&models.User{
				Username: "admin",
				Password: models.HashPassword("changeme"),
				Active:   true,
				RoleID:   adminRole.ID,
			},
		)
	}
}

// grantAll links every known permission to the named role.
func grantAll(db *gorm.DB, roleName string) {
	var permissions []models.Permission
	if err := db.Find(&permissions).Error; err != nil {
		log.Error().Err(err).Str("role", roleName).Msg("can not load permissions")
		return
	}

	for _, p := range permissions {
		grant(db, roleName, p.Name)
	}
}

// grant links one permission to the named role if both exist.
func grant(db *gorm.DB, roleName, permissionName string) {
	var (
		role       models.Role
		permission models.Permission
	)

	if err := db.Where("name = ?", roleName).First(&role).Error; err != nil {
		log.Error().Err(err).Str("role", roleName).Msg("can not grant, role missing")
		return
	}

	if err := db.Where("name = ?", permissionName).First(&permission).Error; err != nil {
		log.Error().Err(err).Str("permission", permissionName).Msg("can not grant, permission missing")
		return
	}

	mapping := models.RolePermission{RoleID: role.ID, PermissionID: permission.ID}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&mapping).Error; err != nil {
		log.Error().Err(err).
			Str("role", roleName).
			Str("permission", permissionName).
			Msg("can not grant permission")
	}
}
