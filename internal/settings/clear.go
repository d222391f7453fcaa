package settings

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/SettingsForge/SettingsForge/internal/db/controller/setting"
	"github.com/SettingsForge/SettingsForge/internal/schema"
)

// ClearField clears one setting's value, deleting the backing blob first
// when the field is an asset. Clearing a key with no persisted row is a
// no-op returning an empty change set; blob deletion failures abort the
// whole operation before the value is touched. The schema lookup is
// advisory only: when the descriptor cannot be located the value is still
// cleared.
func (s *Service) ClearField(ctx context.Context, gate Authorizer, pageID, fieldKey, actor string) (*ChangeSet, error) {
	if !gate.CanUpdate() {
		return nil, ErrUnauthorized
	}

	rec, err := setting.FindByKey(s.db, fieldKey)
	if err != nil {
		return nil, err
	}

	if rec == nil {
		return NewChangeSet(pageID), nil
	}

	req := &Request{Page: pageID, Actor: actor}

	return s.runWithHooks(req, func() (*ChangeSet, error) {
		result := NewChangeSet(pageID)

		field := schema.FindField(s.provider.Fields(pageID), fieldKey)
		if field != nil && field.Kind == schema.KindAsset && rec.Value() != nil && s.blobs != nil {
			// Not transactional with the value clear: a deletion failure
			// propagates and the setting keeps its value.
			if err := s.blobs.Delete(ctx, field.Disk, *rec.Value()); err != nil {
				return nil, err
			}
		}

		before := rec.Original()
		isCreate := !rec.Exists()

		rec.SetValue(nil)
		if !rec.IsDirty() {
			return result, nil
		}

		if err := setting.Save(s.db, rec); err != nil {
			log.Warn().Err(err).Str("attribute", fieldKey).Msg("setting clear failed, skipping change record")
			return result, nil
		}

		result.Changes = append(result.Changes, ChangeRecord{
			Attribute: fieldKey,
			Before:    before,
			After:     nil,
			IsCreate:  isCreate,
		})

		return result, nil
	})
}
