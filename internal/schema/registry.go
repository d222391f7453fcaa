package schema

import (
	"strings"
	"sync"
	"unicode"
)

// Provider supplies the field tree and display label for a settings page.
// Implementations must be deterministic for a given page within one request.
type Provider interface {
	Fields(pageID string) []*Field
	PageName(pageID string) string
}

// Page is one registered settings page: a display label plus an ordered
// field tree.
type Page struct {
	ID     string
	Label  string
	Fields []*Field
}

// Registry is the in-process Provider implementation. Pages are registered
// once at startup; lookups are safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	pages map[string]*Page
}

// NewRegistry creates an empty page registry.
func NewRegistry() *Registry {
	return &Registry{pages: make(map[string]*Page)}
}

// RegisterPage adds or replaces a settings page.
func (r *Registry) RegisterPage(id, label string, fields []*Field) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pages[id] = &Page{ID: id, Label: label, Fields: fields}
}

// Fields returns the field tree for a page. Unknown pages yield an empty
// tree, not an error: a page with no registered schema renders empty.
func (r *Registry) Fields(pageID string) []*Field {
	r.mu.RLock()
	defer r.mu.RUnlock()

	page, ok := r.pages[pageID]
	if !ok {
		return nil
	}

	return page.Fields
}

// PageName returns the display label for a page, falling back to a
// title-cased form of the page ID when no page was registered under it.
func (r *Registry) PageName(pageID string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if page, ok := r.pages[pageID]; ok && page.Label != "" {
		return page.Label
	}

	return titleize(pageID)
}

// titleize turns a page identifier like "mail-server" into "Mail Server".
func titleize(id string) string {
	words := strings.FieldsFunc(id, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	})

	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}

	return strings.Join(words, " ")
}
