package settings

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/SettingsForge/SettingsForge/internal/db/controller/setting"
	"github.com/SettingsForge/SettingsForge/internal/schema"
)

// Update validates a submitted payload against the page's field-derived
// rules and persists only the fields that actually changed, returning the
// resulting change set. Validation is all-or-nothing; persistence is
// best-effort per field: an individual save failure is swallowed (no change
// record) while the rest of the batch completes.
func (s *Service) Update(gate Authorizer, req *Request) (*ChangeSet, error) {
	if !gate.CanUpdate() {
		return nil, ErrUnauthorized
	}

	fields := schema.Flatten(s.provider.Fields(req.Page))

	if err := s.validatePayload(fields, req.Values); err != nil {
		return nil, err
	}

	return s.runWithHooks(req, func() (*ChangeSet, error) {
		return s.applyFields(fields, req)
	})
}

// validatePayload aggregates each field's update rules, derived from its
// currently persisted value, and validates the whole payload in one pass.
// Rules are string rules over the stored form, so each submitted value is
// validated in the serialized form Fill would persist, not its raw JSON
// shape: booleans and lists arrive as non-strings the baked-in rules
// cannot take.
func (s *Service) validatePayload(fields []*schema.Field, payload map[string]any) error {
	rules := make(map[string]any, len(fields))
	data := make(map[string]any, len(fields))

	for _, f := range fields {
		rec, err := setting.FindOrNew(s.db, f.Attribute)
		if err != nil {
			return err
		}

		tag := f.UpdateRules(rec.Value())
		if tag == "" {
			continue
		}

		rules[f.Attribute] = tag

		if value, submitted := f.Fill(payload, f.Attribute); submitted && value != nil {
			data[f.Attribute] = *value
		}
	}

	if len(rules) == 0 {
		return nil
	}

	failures := s.validate.ValidateMap(data, rules)
	if len(failures) == 0 {
		return nil
	}

	verr := &ValidationError{Fields: make(map[string]string, len(failures))}
	for attribute, failure := range failures {
		verr.Fields[attribute] = validationMessage(failure)
	}

	return verr
}

// applyFields persists each resolvable field that the submission carried a
// value for, dirty-gating writes and collecting change records.
func (s *Service) applyFields(fields []*schema.Field, req *Request) (*ChangeSet, error) {
	result := NewChangeSet(req.Page)

	for _, f := range fields {
		if !f.Resolvable() || f.Attribute == "" || f.ReadOnly {
			continue
		}

		attribute := f.StorageAttribute()

		value, submitted := f.Fill(req.Values, attribute)
		if !submitted {
			continue
		}

		rec, err := setting.FindOrNew(s.db, attribute)
		if err != nil {
			return nil, err
		}

		before := rec.Original()
		isCreate := !rec.Exists()

		rec.SetValue(value)
		if !rec.IsDirty() {
			continue
		}

		if err := setting.Save(s.db, rec); err != nil {
			// Single-field persistence failures are non-fatal to the
			// batch: no change record, operation continues.
			log.Warn().Err(err).Str("attribute", attribute).Msg("setting save failed, skipping change record")
			continue
		}

		result.Changes = append(result.Changes, ChangeRecord{
			Attribute: attribute,
			Before:    before,
			After:     rec.Value(),
			IsCreate:  isCreate,
		})
	}

	return result, nil
}

// validationMessage renders a field's failures into one client message,
// covering every failed rule, not just the first.
func validationMessage(failure any) string {
	if errs, ok := failure.(validator.ValidationErrors); ok && len(errs) > 0 {
		parts := make([]string, 0, len(errs))
		for _, e := range errs {
			rule := e.Tag()
			if e.Param() != "" {
				rule += "=" + e.Param()
			}

			parts = append(parts, "failed on the '"+rule+"' rule")
		}

		return strings.Join(parts, "; ")
	}

	if err, ok := failure.(error); ok {
		return err.Error()
	}

	return "invalid value"
}
