// Package registry is the authoritative catalog of loaded mods.
//
// Besides tracking which mods are loaded, the registry attributes arbitrary
// code to the mod that owns it. Every registered instance contributes its
// module identity (the import path of its implementing package) to an index
// mapping module identities to display names. Types, method values and the
// live call stack are all reduced to a package path and looked up through
// that index.
//
// Registration and index maintenance happen under a single lock, so readers
// never observe an instance that is catalogued but not yet indexed.
package registry

import (
	"fmt"
	"iter"
	"sync"

	"github.com/sahilm/fuzzy"

	"github.com/kingrea/modhost/internal/mod"
)

// Logger receives registry warnings. *logging.Logger satisfies it.
type Logger interface {
	Printf(format string, args ...any)
}

// Option customizes a Registry.
type Option func(*Registry)

// WithLogger routes registry warnings to logger.
func WithLogger(logger Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// Registry tracks loaded mod instances in load order.
type Registry struct {
	mu        sync.RWMutex
	instances []*mod.Instance
	modules   map[string]string
	owners    map[string]*mod.Instance
	logger    Logger
}

// New returns an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		modules: map[string]string{},
		owners:  map[string]*mod.Instance{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Register appends inst to the catalog and indexes its module identity.
// Duplicate mod IDs are not rejected; that is the loader's concern. When two
// instances share a module identity the later one wins the index entry.
func (r *Registry) Register(inst *mod.Instance) error {
	if inst == nil {
		return fmt.Errorf("registry: instance is required")
	}
	if inst.Manifest == nil {
		return fmt.Errorf("registry: manifest is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.instances = append(r.instances, inst)
	if inst.ModuleID == "" {
		return nil
	}
	if prev, exists := r.owners[inst.ModuleID]; exists && prev != inst {
		r.warnf("registry: module %s already belongs to %s; attributing it to %s from now on",
			inst.ModuleID, prev.Manifest.Label(), inst.Manifest.Label())
	}
	r.modules[inst.ModuleID] = inst.Manifest.Name
	r.owners[inst.ModuleID] = inst
	return nil
}

// Manifests yields every registered manifest in registration order. The
// sequence may be ranged over any number of times; each pass sees the
// instances registered when it started.
func (r *Registry) Manifests() iter.Seq[*mod.Manifest] {
	return func(yield func(*mod.Manifest) bool) {
		for _, inst := range r.snapshot() {
			if !yield(inst.Manifest) {
				return
			}
		}
	}
}

// Get returns the first manifest whose ID equals id.
func (r *Registry) Get(id string) (*mod.Manifest, bool) {
	for _, inst := range r.snapshot() {
		if inst.Manifest.ID == id {
			return inst.Manifest, true
		}
	}
	return nil, false
}

// IsLoaded reports whether a mod with the given ID is registered.
func (r *Registry) IsLoaded(id string) bool {
	_, ok := r.Get(id)
	return ok
}

// Instances returns the live instances in registration order.
func (r *Registry) Instances() []*mod.Instance {
	snap := r.snapshot()
	out := make([]*mod.Instance, len(snap))
	copy(out, snap)
	return out
}

// Len returns the number of registered instances.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.instances)
}

// Suggest returns up to limit registered IDs that fuzzily match query, best
// match first. A non-positive limit returns every match.
func (r *Registry) Suggest(query string, limit int) []string {
	snap := r.snapshot()
	ids := make([]string, 0, len(snap))
	for _, inst := range snap {
		ids = append(ids, inst.Manifest.ID)
	}
	matches := fuzzy.Find(query, ids)
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]string, 0, len(matches))
	for _, match := range matches {
		out = append(out, match.Str)
	}
	return out
}

// snapshot returns the catalog as of now. The backing array is append-only,
// so the returned slice stays valid after the lock is released.
func (r *Registry) snapshot() []*mod.Instance {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.instances[:len(r.instances):len(r.instances)]
}

func (r *Registry) warnf(format string, args ...any) {
	if r.logger == nil {
		return
	}
	r.logger.Printf(format, args...)
}
