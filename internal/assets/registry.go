package assets

import (
	"sort"

	"toycar/internal/physics"
	"toycar/internal/scene"
)

// Entry is a loaded model plus its per-asset settings.
type Entry struct {
	Name    string
	Model   *scene.Node
	Shape   physics.ShapeKind
	Signage bool
}

// Registry maps placement names to loaded models. Models are templates: callers clone
// them before attaching anything to a scene.
type Registry struct {
	entries map[string]Entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Add registers e under e.Name, replacing any previous entry.
func (r *Registry) Add(e Entry) {
	r.entries[e.Name] = e
}

// Lookup returns the entry for name.
func (r *Registry) Lookup(name string) (Entry, bool) {
	e, ok := r.entries[name]
	return e, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.entries))
	for name := range r.entries {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of entries.
func (r *Registry) Len() int { return len(r.entries) }
