package auth

// Permission constants define the available permissions in the system.
// These are used for role-based access control (RBAC) to restrict access
// to specific resources and actions.
const (
	// PermSettingsView allows viewing settings pages and their values.
	PermSettingsView = "settings.view"
	// PermSettingsUpdate allows updating settings values and clearing
	// asset fields.
	PermSettingsUpdate = "settings.update"

	// PermAdminUsers allows managing user accounts.
	PermAdminUsers = "admin.users"
	// PermAdminRoles allows managing roles and their permissions.
	PermAdminRoles = "admin.roles"
)
