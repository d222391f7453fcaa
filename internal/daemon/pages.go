package daemon

import (
	"github.com/SettingsForge/SettingsForge/internal/schema"
)

// registerDefaultPages installs the built-in settings pages. Deployments
// extend this list with their own pages.
func registerDefaultPages(registry *schema.Registry) {
	registry.RegisterPage("general", "General", []*schema.Field{
		{
			Kind:      schema.KindText,
			Attribute: "site_name",
			Label:     "Site Name",
			Rules:     "required",
		},
		{
			Kind:      schema.KindText,
			Attribute: "site_email",
			Label:     "Contact Email",
			Rules:     "omitempty,email",
		},
		{
			Kind:      schema.KindAsset,
			Attribute: "site_logo",
			Label:     "Site Logo",
			Panel:     "Branding",
			Disk:      "public",
			Rules:     "omitempty",
		},
		{
			Kind:  schema.KindComposite,
			Label: "Office Location",
			Panel: "Contact",
			Fields: []*schema.Field{
				{
					Kind:      schema.KindText,
					Attribute: "office_latitude",
					Label:     "Latitude",
					Rules:     "omitempty,latitude",
				},
				{
					Kind:      schema.KindText,
					Attribute: "office_longitude",
					Label:     "Longitude",
					Rules:     "omitempty,longitude",
				},
			},
		},
		{
			Kind:      schema.KindBoolean,
			Attribute: "maintenance_mode",
			Label:     "Maintenance Mode",
			Panel:     "Operations",
		},
		{
			Kind:      schema.KindList,
			Attribute: "allowed_ips",
			Label:     "Allowed IPs",
			Panel:     "Operations",
			Rules:     "omitempty,json",
		},
	})
}
