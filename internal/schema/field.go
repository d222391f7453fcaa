// Package schema defines the declarative field tree a settings page is made
// of. Fields form a closed set of kinds; capability checks are resolved by
// kind, never by runtime type inspection.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind identifies the closed set of field variants.
type Kind string

const (
	// KindText is a leaf field holding free-form text.
	KindText Kind = "text"
	// KindBoolean is a leaf field holding a true/false flag.
	KindBoolean Kind = "boolean"
	// KindList is a leaf field holding a JSON-serialized list.
	KindList Kind = "list"
	// KindAsset is a leaf field referencing a binary asset in a blob store.
	KindAsset Kind = "asset"
	// KindComposite wraps multiple sub-fields that share presentation but
	// each bind to their own storage key.
	KindComposite Kind = "composite"
	// KindGrouping is a pure presentation container carrying no data.
	KindGrouping Kind = "grouping"
)

// maxFieldDepth bounds recursive traversals over externally supplied trees.
// Real schemas are shallow; the bound guards against pathological cycles.
const maxFieldDepth = 8

// Field is one node of a page's field tree. Leaf kinds bind to a storage
// key through Attribute; container kinds carry sub-fields instead.
type Field struct {
	// Kind selects the field variant.
	Kind Kind
	// Attribute is the storage key this field binds to. Empty for
	// grouping and composite containers.
	Attribute string
	// Label is the display name of the field.
	Label string
	// Panel is the display group this field belongs to. Fields without a
	// panel are assigned the page's default panel at resolve time.
	Panel string
	// Rules is the validation rule set applied on update, in
	// go-playground/validator tag syntax (for example "required,email").
	Rules string
	// Fields holds the sub-fields of composite and grouping containers.
	Fields []*Field
	// OriginalAttribute, when set, substitutes the effective storage key
	// during updates. Used by localized fields where several display
	// variants collapse onto one canonical key.
	OriginalAttribute string
	// Disk names the blob-store target for asset fields.
	Disk string
	// ReadOnly marks the field as not writable through the update pipeline.
	ReadOnly bool
	// CanSee optionally restricts field visibility per request.
	CanSee func() bool
}

// Visible reports whether the caller may see this field.
func (f *Field) Visible() bool {
	return f.CanSee == nil || f.CanSee()
}

// Resolvable reports whether the field can produce a storable value from a
// submission. Container kinds cannot; their sub-fields can.
func (f *Field) Resolvable() bool {
	switch f.Kind {
	case KindText, KindBoolean, KindList, KindAsset:
		return true
	default:
		return false
	}
}

// StorageAttribute returns the effective storage key for updates, honoring
// the original-attribute override of localized fields.
func (f *Field) StorageAttribute() string {
	if f.OriginalAttribute != "" {
		return f.OriginalAttribute
	}

	return f.Attribute
}

// UpdateRules derives the validation rule set for this field given its
// currently persisted value. An asset field that already holds a value is
// no longer required: the stored asset satisfies the requirement.
func (f *Field) UpdateRules(current *string) string {
	rules := f.Rules
	if f.Kind == KindAsset && current != nil && *current != "" {
		rules = dropRequired(rules)
	}

	return rules
}

// Fill materializes the submitted value for the given attribute into a
// storable string. The second return is false when the submission did not
// carry the attribute at all; a nil value with true means an explicit null.
func (f *Field) Fill(payload map[string]any, attribute string) (*string, bool) {
	raw, ok := payload[attribute]
	if !ok {
		return nil, false
	}

	if raw == nil {
		return nil, true
	}

	switch f.Kind {
	case KindBoolean:
		if b, isBool := raw.(bool); isBool {
			return ptr(fmt.Sprintf("%t", b)), true
		}
	case KindList:
		if _, isString := raw.(string); !isString {
			encoded, err := json.Marshal(raw)
			if err != nil {
				return nil, false
			}

			return ptr(string(encoded)), true
		}
	case KindText, KindAsset, KindComposite, KindGrouping:
	}

	return ptr(fmt.Sprintf("%v", raw)), true
}

// Flatten reduces a field tree to its leaf fields: leaves with a non-empty
// attribute are kept, composite containers are spliced open, and pure
// grouping nodes are discarded. Attribute collisions between spliced
// sub-fields and top-level fields are not deduplicated; the later entry
// wins at apply time.
func Flatten(fields []*Field) []*Field {
	out := make([]*Field, 0, len(fields))

	for _, f := range fields {
		switch {
		case f.Attribute != "":
			out = append(out, f)
		case f.Kind == KindComposite:
			for _, sub := range f.Fields {
				if sub.Attribute != "" {
					out = append(out, sub)
				}
			}
		}
	}

	return out
}

// FindField locates a field by attribute anywhere in the tree, searching
// depth-first through grouping and composite containers. Returns nil when
// the attribute is unknown or deeper than the traversal bound.
func FindField(fields []*Field, attribute string) *Field {
	return findField(fields, attribute, 0)
}

func findField(fields []*Field, attribute string, depth int) *Field {
	if depth >= maxFieldDepth {
		return nil
	}

	for _, f := range fields {
		if f.Attribute == attribute {
			return f
		}

		if len(f.Fields) > 0 {
			if found := findField(f.Fields, attribute, depth+1); found != nil {
				return found
			}
		}
	}

	return nil
}

// dropRequired removes the "required" rule from a validator tag.
func dropRequired(rules string) string {
	if rules == "" {
		return ""
	}

	parts := strings.Split(rules, ",")
	kept := parts[:0]

	for _, p := range parts {
		if strings.TrimSpace(p) != "required" {
			kept = append(kept, p)
		}
	}

	return strings.Join(kept, ",")
}

func ptr(s string) *string {
	return &s
}
