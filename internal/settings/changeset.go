package settings

// ChangeRecord is one audit entry: a key whose value actually changed and
// was successfully persisted. No-op and failed writes produce no record.
type ChangeRecord struct {
	// Attribute is the setting key that changed.
	Attribute string `json:"attribute"`
	// Before is the previously persisted value.
	Before *string `json:"before"`
	// After is the newly persisted value.
	After *string `json:"after"`
	// IsCreate is true when the setting had no prior persisted row.
	IsCreate bool `json:"is_create"`
}

// ChangeSet is the audit output of one update operation against a page.
// A submission that changes nothing yields an empty, non-nil change list.
type ChangeSet struct {
	Page    string         `json:"page"`
	Changes []ChangeRecord `json:"changes"`
}

// NewChangeSet creates an empty change set for a page.
func NewChangeSet(page string) *ChangeSet {
	return &ChangeSet{Page: page, Changes: []ChangeRecord{}}
}
