package models

// RolePermission is the junction table assigning permissions to roles.
// Deleting a role removes its assignments through the CASCADE constraint.
type RolePermission struct {
	RoleID       uint       `gorm:"primaryKey;column:role_id"`
	PermissionID uint       `gorm:"primaryKey;column:permission_id"`
	Role         Role       `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE"`
	Permission   Permission `gorm:"foreignKey:PermissionID;constraint:OnDelete:CASCADE"`
}

// TableName overrides GORM's default table naming.
func (RolePermission) TableName() string {
	return "role_permissions"
}
