package settings

import (
	"github.com/SettingsForge/SettingsForge/internal/db/controller/setting"
	"github.com/SettingsForge/SettingsForge/internal/schema"
)

// Panel is a display group of fields within a page.
type Panel struct {
	Name string `json:"name"`
}

// ResolvedField is the per-request presentation view of one schema field
// with its stored value bound. Resolution never mutates the shared schema
// tree: concurrent requests each get their own view.
type ResolvedField struct {
	Attribute string          `json:"attribute,omitempty"`
	Label     string          `json:"label"`
	Kind      schema.Kind     `json:"kind"`
	Panel     string          `json:"panel,omitempty"`
	Value     *string         `json:"value"`
	Fields    []ResolvedField `json:"fields,omitempty"`
}

// ReadResult is the display payload for one settings page.
type ReadResult struct {
	Panels []Panel         `json:"panels"`
	Fields []ResolvedField `json:"fields"`
}

// ResolveForRead loads the field tree for a page and binds each field's
// persisted value for presentation. Values come from one bulk load of the
// store rather than a query per field. Purely a read transform: no side
// effects, and an empty or unknown schema yields empty fields rather than
// an error.
func (s *Service) ResolveForRead(gate Authorizer, pageID string) (*ReadResult, error) {
	if !gate.CanView() {
		return nil, ErrUnauthorized
	}

	label := s.provider.PageName(pageID)
	tree := s.provider.Fields(pageID)

	rows, err := setting.GetAll(s.db)
	if err != nil {
		return nil, err
	}

	stored := make(map[string]*string, len(rows))
	for _, row := range rows {
		stored[row.Key] = row.Value
	}

	fields := make([]ResolvedField, 0, len(tree))

	for _, f := range tree {
		if !f.Visible() {
			continue
		}

		fields = append(fields, resolveField(f, label, stored))
	}

	return &ReadResult{
		Panels: panelsWithDefault(label, fields),
		Fields: fields,
	}, nil
}

// resolveField binds stored values onto one field view. Leaf fields bind an
// empty string when no value exists so the UI always receives a defined
// display value; composite sub-fields bind nil instead, keeping "never set"
// distinguishable from "set to empty".
func resolveField(f *schema.Field, defaultPanel string, stored map[string]*string) ResolvedField {
	resolved := ResolvedField{
		Attribute: f.Attribute,
		Label:     f.Label,
		Kind:      f.Kind,
		Panel:     f.Panel,
	}

	if resolved.Panel == "" {
		resolved.Panel = defaultPanel
	}

	if f.Attribute != "" {
		resolved.Value = stored[f.Attribute]
		if resolved.Value == nil {
			empty := ""
			resolved.Value = &empty
		}
	}

	for _, sub := range f.Fields {
		if !sub.Visible() {
			continue
		}

		view := ResolvedField{
			Attribute: sub.Attribute,
			Label:     sub.Label,
			Kind:      sub.Kind,
			Panel:     sub.Panel,
			Value:     stored[sub.Attribute],
		}

		resolved.Fields = append(resolved.Fields, view)
	}

	return resolved
}

// panelsWithDefault computes the effective panel list: every panel
// referenced by a field, deduplicated by name in first-reference order,
// with a default panel named after the page label prepended when nothing
// referenced it. Every page therefore renders with at least one panel.
func panelsWithDefault(label string, fields []ResolvedField) []Panel {
	seen := make(map[string]bool)
	panels := make([]Panel, 0, 1)

	for _, f := range fields {
		if f.Panel == "" || seen[f.Panel] {
			continue
		}

		seen[f.Panel] = true
		panels = append(panels, Panel{Name: f.Panel})
	}

	if !seen[label] {
		panels = append([]Panel{{Name: label}}, panels...)
	}

	return panels
}
