package settings

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrUnauthorized is returned when the caller lacks the capability for
	// the requested operation. Surfaced to clients as a 403; never retried.
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError carries the full per-field message set of a rejected
// submission. Validation is all-or-nothing: when any field fails, nothing
// is persisted.
type ValidationError struct {
	// Fields maps each failing attribute to its validation message.
	Fields map[string]string
}

// Error implements the error interface with a deterministic field order.
func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}

	return "validation failed: " + strings.Join(parts, "; ")
}
