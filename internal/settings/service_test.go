package settings_test

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	settingctl "github.com/SettingsForge/SettingsForge/internal/db/controller/setting"
	"github.com/SettingsForge/SettingsForge/internal/db/models"
	"github.com/SettingsForge/SettingsForge/internal/schema"
	"github.com/SettingsForge/SettingsForge/internal/settings"
)

// fakeGate is a fixed-capability Authorizer.
type fakeGate struct {
	view   bool
	update bool
}

func (g fakeGate) CanView() bool   { return g.view }
func (g fakeGate) CanUpdate() bool { return g.update }

var (
	allowAll = fakeGate{view: true, update: true}
	denyAll  = fakeGate{}
)

// fakeBlobStore records deletions and can be armed to fail.
type fakeBlobStore struct {
	deletedDisks []string
	deletedRefs  []string
	err          error
}

func (s *fakeBlobStore) Delete(_ context.Context, disk, ref string) error {
	if s.err != nil {
		return s.err
	}

	s.deletedDisks = append(s.deletedDisks, disk)
	s.deletedRefs = append(s.deletedRefs, ref)

	return nil
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(&models.Setting{}, &models.SettingChange{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func seedValue(t *testing.T, db *gorm.DB, key, value string) {
	t.Helper()
	require.NoError(t, db.Create(&models.Setting{Key: key, Value: &value}).Error)
}

func strPtr(s string) *string {
	return &s
}

func generalRegistry() *schema.Registry {
	registry := schema.NewRegistry()
	registry.RegisterPage("general", "General", []*schema.Field{
		{Kind: schema.KindText, Attribute: "site_name", Label: "Site Name", Rules: "required"},
		{Kind: schema.KindText, Attribute: "site_email", Label: "Contact Email", Rules: "omitempty,email"},
		{Kind: schema.KindAsset, Attribute: "site_logo", Label: "Site Logo", Panel: "Branding", Disk: "public"},
		{Kind: schema.KindComposite, Label: "Office Location", Panel: "Contact", Fields: []*schema.Field{
			{Kind: schema.KindText, Attribute: "office_latitude", Label: "Latitude"},
			{Kind: schema.KindText, Attribute: "office_longitude", Label: "Longitude"},
		}},
		{Kind: schema.KindBoolean, Attribute: "maintenance_mode", Label: "Maintenance Mode", Panel: "Operations"},
	})

	return registry
}

func TestResolveForRead(t *testing.T) {
	db := setupTestDB(t)
	svc := settings.New(db, generalRegistry(), nil, settings.Hooks{})

	t.Run("unauthorized", func(t *testing.T) {
		result, err := svc.ResolveForRead(denyAll, "general")
		require.ErrorIs(t, err, settings.ErrUnauthorized)
		assert.Nil(t, result)
	})

	t.Run("unset leaf binds empty string", func(t *testing.T) {
		result, err := svc.ResolveForRead(allowAll, "general")
		require.NoError(t, err)

		byAttr := indexFields(result.Fields)
		require.Contains(t, byAttr, "site_name")
		require.NotNil(t, byAttr["site_name"].Value)
		assert.Equal(t, "", *byAttr["site_name"].Value)
	})

	t.Run("unset composite sub-field binds nil", func(t *testing.T) {
		result, err := svc.ResolveForRead(allowAll, "general")
		require.NoError(t, err)

		composite := findByLabel(t, result.Fields, "Office Location")
		require.Len(t, composite.Fields, 2)
		assert.Nil(t, composite.Fields[0].Value)
	})

	t.Run("stored values bound", func(t *testing.T) {
		seedValue(t, db, "site_name", "Acme")
		seedValue(t, db, "office_latitude", "52.37")

		result, err := svc.ResolveForRead(allowAll, "general")
		require.NoError(t, err)

		byAttr := indexFields(result.Fields)
		assert.Equal(t, strPtr("Acme"), byAttr["site_name"].Value)

		composite := findByLabel(t, result.Fields, "Office Location")
		assert.Equal(t, strPtr("52.37"), composite.Fields[0].Value)
	})

	t.Run("null-valued rows keep the unset fallbacks", func(t *testing.T) {
		require.NoError(t, db.Create(&models.Setting{Key: "site_email"}).Error)
		require.NoError(t, db.Create(&models.Setting{Key: "office_longitude"}).Error)

		result, err := svc.ResolveForRead(allowAll, "general")
		require.NoError(t, err)

		byAttr := indexFields(result.Fields)
		require.NotNil(t, byAttr["site_email"].Value)
		assert.Equal(t, "", *byAttr["site_email"].Value)

		composite := findByLabel(t, result.Fields, "Office Location")
		assert.Nil(t, composite.Fields[1].Value)
	})

	t.Run("default panel prepended in first-reference order", func(t *testing.T) {
		result, err := svc.ResolveForRead(allowAll, "general")
		require.NoError(t, err)

		names := make([]string, 0, len(result.Panels))
		for _, p := range result.Panels {
			names = append(names, p.Name)
		}

		assert.Equal(t, []string{"General", "Branding", "Contact", "Operations"}, names)
	})

	t.Run("unknown page renders empty with default panel", func(t *testing.T) {
		result, err := svc.ResolveForRead(allowAll, "mail-server")
		require.NoError(t, err)

		assert.Empty(t, result.Fields)
		require.Len(t, result.Panels, 1)
		assert.Equal(t, "Mail Server", result.Panels[0].Name)
	})

	t.Run("hidden fields filtered", func(t *testing.T) {
		registry := schema.NewRegistry()
		registry.RegisterPage("general", "General", []*schema.Field{
			{Kind: schema.KindText, Attribute: "visible", Label: "Visible"},
			{Kind: schema.KindText, Attribute: "hidden", Label: "Hidden", CanSee: func() bool { return false }},
		})

		hiddenSvc := settings.New(db, registry, nil, settings.Hooks{})

		result, err := hiddenSvc.ResolveForRead(allowAll, "general")
		require.NoError(t, err)
		require.Len(t, result.Fields, 1)
		assert.Equal(t, "visible", result.Fields[0].Attribute)
	})

	t.Run("read is idempotent", func(t *testing.T) {
		first, err := svc.ResolveForRead(allowAll, "general")
		require.NoError(t, err)

		second, err := svc.ResolveForRead(allowAll, "general")
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})
}

func indexFields(fields []settings.ResolvedField) map[string]settings.ResolvedField {
	out := make(map[string]settings.ResolvedField, len(fields))
	for _, f := range fields {
		if f.Attribute != "" {
			out[f.Attribute] = f
		}
	}

	return out
}

func findByLabel(t *testing.T, fields []settings.ResolvedField, label string) settings.ResolvedField {
	t.Helper()

	for _, f := range fields {
		if f.Label == label {
			return f
		}
	}

	t.Fatalf("field labeled %q not found", label)

	return settings.ResolvedField{}
}

func TestUpdate(t *testing.T) {
	t.Run("unauthorized", func(t *testing.T) {
		db := setupTestDB(t)
		svc := settings.New(db, generalRegistry(), nil, settings.Hooks{})

		cs, err := svc.Update(fakeGate{view: true}, &settings.Request{Page: "general"})
		require.ErrorIs(t, err, settings.ErrUnauthorized)
		assert.Nil(t, cs)
	})

	t.Run("validation is all-or-nothing", func(t *testing.T) {
		db := setupTestDB(t)
		svc := settings.New(db, generalRegistry(), nil, settings.Hooks{})

		cs, err := svc.Update(allowAll, &settings.Request{
			Page: "general",
			Values: map[string]any{
				"site_name":  "Acme",
				"site_email": "not-an-email",
			},
		})
		require.Error(t, err)
		assert.Nil(t, cs)

		var verr *settings.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "site_email")

		// the valid field was not persisted either
		rec, err := settingctl.FindByKey(db, "site_name")
		require.NoError(t, err)
		assert.Nil(t, rec)
	})

	t.Run("create and update produce change records", func(t *testing.T) {
		db := setupTestDB(t)
		svc := settings.New(db, generalRegistry(), nil, settings.Hooks{})

		cs, err := svc.Update(allowAll, &settings.Request{
			Page:   "general",
			Values: map[string]any{"site_name": "Acme"},
		})
		require.NoError(t, err)
		require.Len(t, cs.Changes, 1)

		change := cs.Changes[0]
		assert.Equal(t, "site_name", change.Attribute)
		assert.Nil(t, change.Before)
		assert.Equal(t, strPtr("Acme"), change.After)
		assert.True(t, change.IsCreate)

		cs, err = svc.Update(allowAll, &settings.Request{
			Page:   "general",
			Values: map[string]any{"site_name": "Acme Corp"},
		})
		require.NoError(t, err)
		require.Len(t, cs.Changes, 1)

		change = cs.Changes[0]
		assert.Equal(t, strPtr("Acme"), change.Before)
		assert.Equal(t, strPtr("Acme Corp"), change.After)
		assert.False(t, change.IsCreate)
	})

	t.Run("unchanged value yields empty change set", func(t *testing.T) {
		db := setupTestDB(t)
		seedValue(t, db, "site_name", "Acme")
		svc := settings.New(db, generalRegistry(), nil, settings.Hooks{})

		cs, err := svc.Update(allowAll, &settings.Request{
			Page:   "general",
			Values: map[string]any{"site_name": "Acme"},
		})
		require.NoError(t, err)
		require.NotNil(t, cs)
		assert.Empty(t, cs.Changes)
	})

	t.Run("omitted attributes are skipped", func(t *testing.T) {
		db := setupTestDB(t)
		seedValue(t, db, "site_name", "Acme")
		seedValue(t, db, "site_email", "old@example.com")
		svc := settings.New(db, generalRegistry(), nil, settings.Hooks{})

		cs, err := svc.Update(allowAll, &settings.Request{
			Page:   "general",
			Values: map[string]any{"site_name": "Renamed"},
		})
		require.NoError(t, err)
		require.Len(t, cs.Changes, 1)
		assert.Equal(t, "site_name", cs.Changes[0].Attribute)

		rec, err := settingctl.FindByKey(db, "site_email")
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, strPtr("old@example.com"), rec.Value())
	})

	t.Run("boolean and composite sub-fields persist", func(t *testing.T) {
		db := setupTestDB(t)
		seedValue(t, db, "site_name", "Acme")
		svc := settings.New(db, generalRegistry(), nil, settings.Hooks{})

		cs, err := svc.Update(allowAll, &settings.Request{
			Page: "general",
			Values: map[string]any{
				"site_name":        "Acme",
				"maintenance_mode": true,
				"office_latitude":  "52.37",
			},
		})
		require.NoError(t, err)
		assert.Len(t, cs.Changes, 2)

		rec, err := settingctl.FindByKey(db, "maintenance_mode")
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, strPtr("true"), rec.Value())
	})

	t.Run("list payload validates in serialized form", func(t *testing.T) {
		db := setupTestDB(t)
		registry := schema.NewRegistry()
		registry.RegisterPage("general", "General", []*schema.Field{
			{Kind: schema.KindList, Attribute: "allowed_ips", Rules: "omitempty,json"},
		})
		svc := settings.New(db, registry, nil, settings.Hooks{})

		cs, err := svc.Update(allowAll, &settings.Request{
			Page:   "general",
			Values: map[string]any{"allowed_ips": []any{"10.0.0.1", "10.0.0.2"}},
		})
		require.NoError(t, err)
		require.Len(t, cs.Changes, 1)
		assert.Equal(t, strPtr(`["10.0.0.1","10.0.0.2"]`), cs.Changes[0].After)

		// a pre-serialized string still hits the rule as-is
		cs, err = svc.Update(allowAll, &settings.Request{
			Page:   "general",
			Values: map[string]any{"allowed_ips": "not json"},
		})
		require.Error(t, err)
		assert.Nil(t, cs)

		var verr *settings.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "allowed_ips")
	})

	t.Run("boolean payload passes string rules", func(t *testing.T) {
		db := setupTestDB(t)
		registry := schema.NewRegistry()
		registry.RegisterPage("general", "General", []*schema.Field{
			{Kind: schema.KindBoolean, Attribute: "maintenance_mode", Rules: "omitempty,boolean"},
		})
		svc := settings.New(db, registry, nil, settings.Hooks{})

		cs, err := svc.Update(allowAll, &settings.Request{
			Page:   "general",
			Values: map[string]any{"maintenance_mode": true},
		})
		require.NoError(t, err)
		require.Len(t, cs.Changes, 1)
		assert.Equal(t, strPtr("true"), cs.Changes[0].After)
	})

	t.Run("original attribute re-targets storage key", func(t *testing.T) {
		db := setupTestDB(t)
		registry := schema.NewRegistry()
		registry.RegisterPage("general", "General", []*schema.Field{
			{Kind: schema.KindText, Attribute: "greeting_en", OriginalAttribute: "greeting"},
		})
		svc := settings.New(db, registry, nil, settings.Hooks{})

		cs, err := svc.Update(allowAll, &settings.Request{
			Page:   "general",
			Values: map[string]any{"greeting": "hello"},
		})
		require.NoError(t, err)
		require.Len(t, cs.Changes, 1)
		assert.Equal(t, "greeting", cs.Changes[0].Attribute)

		rec, err := settingctl.FindByKey(db, "greeting")
		require.NoError(t, err)
		require.NotNil(t, rec)

		rec, err = settingctl.FindByKey(db, "greeting_en")
		require.NoError(t, err)
		assert.Nil(t, rec)
	})

	t.Run("read-only fields never persist", func(t *testing.T) {
		db := setupTestDB(t)
		registry := schema.NewRegistry()
		registry.RegisterPage("general", "General", []*schema.Field{
			{Kind: schema.KindText, Attribute: "locked", ReadOnly: true},
		})
		svc := settings.New(db, registry, nil, settings.Hooks{})

		cs, err := svc.Update(allowAll, &settings.Request{
			Page:   "general",
			Values: map[string]any{"locked": "nope"},
		})
		require.NoError(t, err)
		assert.Empty(t, cs.Changes)

		rec, err := settingctl.FindByKey(db, "locked")
		require.NoError(t, err)
		assert.Nil(t, rec)
	})

	t.Run("explicit null clears a stored value", func(t *testing.T) {
		db := setupTestDB(t)
		seedValue(t, db, "site_name", "Acme")

		registry := schema.NewRegistry()
		registry.RegisterPage("general", "General", []*schema.Field{
			{Kind: schema.KindText, Attribute: "site_name"},
		})
		svc := settings.New(db, registry, nil, settings.Hooks{})

		cs, err := svc.Update(allowAll, &settings.Request{
			Page:   "general",
			Values: map[string]any{"site_name": nil},
		})
		require.NoError(t, err)
		require.Len(t, cs.Changes, 1)
		assert.Nil(t, cs.Changes[0].After)

		rec, err := settingctl.FindByKey(db, "site_name")
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Nil(t, rec.Value())
	})

	t.Run("stored asset satisfies its required rule", func(t *testing.T) {
		db := setupTestDB(t)
		seedValue(t, db, "site_logo", "logos/a.png")

		registry := schema.NewRegistry()
		registry.RegisterPage("general", "General", []*schema.Field{
			{Kind: schema.KindAsset, Attribute: "site_logo", Rules: "required", Disk: "public"},
		})
		svc := settings.New(db, registry, nil, settings.Hooks{})

		// payload omits the asset entirely; required is waived
		cs, err := svc.Update(allowAll, &settings.Request{
			Page:   "general",
			Values: map[string]any{},
		})
		require.NoError(t, err)
		assert.Empty(t, cs.Changes)
	})
}

func TestUpdateHooks(t *testing.T) {
	t.Run("before hook error aborts before any write", func(t *testing.T) {
		db := setupTestDB(t)
		hookErr := errors.New("rejected")

		svc := settings.New(db, generalRegistry(), nil, settings.Hooks{
			BeforeUpdating: func(*settings.Request) error { return hookErr },
		})

		cs, err := svc.Update(allowAll, &settings.Request{
			Page:   "general",
			Values: map[string]any{"site_name": "Acme"},
		})
		require.ErrorIs(t, err, hookErr)
		assert.Nil(t, cs)

		rec, err := settingctl.FindByKey(db, "site_name")
		require.NoError(t, err)
		assert.Nil(t, rec)
	})

	t.Run("after hook observes and can replace the change set", func(t *testing.T) {
		db := setupTestDB(t)

		var observed *settings.ChangeSet

		replacement := settings.NewChangeSet("general")

		svc := settings.New(db, generalRegistry(), nil, settings.Hooks{
			AfterUpdated: func(_ *settings.Request, cs *settings.ChangeSet) *settings.ChangeSet {
				observed = cs
				return replacement
			},
		})

		cs, err := svc.Update(allowAll, &settings.Request{
			Page:   "general",
			Values: map[string]any{"site_name": "Acme"},
		})
		require.NoError(t, err)

		require.NotNil(t, observed)
		assert.Len(t, observed.Changes, 1)

		// the hook's non-nil return replaces the result
		assert.Same(t, replacement, cs)

		// the write itself still happened
		rec, err := settingctl.FindByKey(db, "site_name")
		require.NoError(t, err)
		require.NotNil(t, rec)
	})

	t.Run("after hook returning nil keeps the original result", func(t *testing.T) {
		db := setupTestDB(t)

		svc := settings.New(db, generalRegistry(), nil, settings.Hooks{
			AfterUpdated: func(*settings.Request, *settings.ChangeSet) *settings.ChangeSet { return nil },
		})

		cs, err := svc.Update(allowAll, &settings.Request{
			Page:   "general",
			Values: map[string]any{"site_name": "Acme"},
		})
		require.NoError(t, err)
		require.NotNil(t, cs)
		assert.Len(t, cs.Changes, 1)
	})
}

func TestClearField(t *testing.T) {
	ctx := context.Background()

	t.Run("unauthorized", func(t *testing.T) {
		db := setupTestDB(t)
		svc := settings.New(db, generalRegistry(), nil, settings.Hooks{})

		cs, err := svc.ClearField(ctx, fakeGate{view: true}, "general", "site_name", "admin")
		require.ErrorIs(t, err, settings.ErrUnauthorized)
		assert.Nil(t, cs)
	})

	t.Run("missing row is a no-op without hooks", func(t *testing.T) {
		db := setupTestDB(t)

		hookCalled := false
		svc := settings.New(db, generalRegistry(), nil, settings.Hooks{
			BeforeUpdating: func(*settings.Request) error {
				hookCalled = true
				return nil
			},
		})

		cs, err := svc.ClearField(ctx, allowAll, "general", "site_name", "admin")
		require.NoError(t, err)
		require.NotNil(t, cs)
		assert.Empty(t, cs.Changes)
		assert.False(t, hookCalled)
	})

	t.Run("asset clear deletes blob before the value", func(t *testing.T) {
		db := setupTestDB(t)
		seedValue(t, db, "site_logo", "logos/a.png")

		blobs := &fakeBlobStore{}
		svc := settings.New(db, generalRegistry(), blobs, settings.Hooks{})

		cs, err := svc.ClearField(ctx, allowAll, "general", "site_logo", "admin")
		require.NoError(t, err)
		require.Len(t, cs.Changes, 1)
		assert.Nil(t, cs.Changes[0].After)

		assert.Equal(t, []string{"public"}, blobs.deletedDisks)
		assert.Equal(t, []string{"logos/a.png"}, blobs.deletedRefs)

		rec, err := settingctl.FindByKey(db, "site_logo")
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Nil(t, rec.Value())
	})

	t.Run("blob failure aborts and keeps the value", func(t *testing.T) {
		db := setupTestDB(t)
		seedValue(t, db, "site_logo", "logos/a.png")

		blobErr := errors.New("bucket unreachable")
		svc := settings.New(db, generalRegistry(), &fakeBlobStore{err: blobErr}, settings.Hooks{})

		cs, err := svc.ClearField(ctx, allowAll, "general", "site_logo", "admin")
		require.ErrorIs(t, err, blobErr)
		assert.Nil(t, cs)

		rec, err := settingctl.FindByKey(db, "site_logo")
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, strPtr("logos/a.png"), rec.Value())
	})

	t.Run("unknown field descriptor still clears the value", func(t *testing.T) {
		db := setupTestDB(t)
		seedValue(t, db, "orphaned", "value")

		blobs := &fakeBlobStore{}
		svc := settings.New(db, generalRegistry(), blobs, settings.Hooks{})

		cs, err := svc.ClearField(ctx, allowAll, "general", "orphaned", "admin")
		require.NoError(t, err)
		require.Len(t, cs.Changes, 1)

		// no schema descriptor, so nothing hit the blob store
		assert.Empty(t, blobs.deletedRefs)

		rec, err := settingctl.FindByKey(db, "orphaned")
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Nil(t, rec.Value())
	})

	t.Run("non-asset clear skips the blob store", func(t *testing.T) {
		db := setupTestDB(t)
		seedValue(t, db, "site_name", "Acme")

		blobs := &fakeBlobStore{}
		svc := settings.New(db, generalRegistry(), blobs, settings.Hooks{})

		cs, err := svc.ClearField(ctx, allowAll, "general", "site_name", "admin")
		require.NoError(t, err)
		require.Len(t, cs.Changes, 1)
		assert.Empty(t, blobs.deletedRefs)
	})
}
