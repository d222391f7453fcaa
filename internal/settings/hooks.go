package settings

// Hooks holds the optional observers wrapped around every settings write.
// Both are process-wide: configured once at startup on the Service rather
// than registered as ambient global state. A zero Hooks value is a no-op.
type Hooks struct {
	// BeforeUpdating runs before the write is applied. A non-nil error
	// aborts the operation; the write never happens.
	BeforeUpdating func(*Request) error
	// AfterUpdated runs after the write with its resulting change set.
	// Returning a non-nil ChangeSet replaces the result handed back to the
	// caller; returning nil keeps it.
	AfterUpdated func(*Request, *ChangeSet) *ChangeSet
}

// runWithHooks invokes action between the before and after observers.
func (s *Service) runWithHooks(req *Request, action func() (*ChangeSet, error)) (*ChangeSet, error) {
	if s.hooks.BeforeUpdating != nil {
		if err := s.hooks.BeforeUpdating(req); err != nil {
			return nil, err
		}
	}

	result, err := action()
	if err != nil {
		return nil, err
	}

	if s.hooks.AfterUpdated != nil {
		if replacement := s.hooks.AfterUpdated(req, result); replacement != nil {
			result = replacement
		}
	}

	return result, nil
}
