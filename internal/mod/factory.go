package mod

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownEntryPoint is returned by Factories.Build for unregistered names.
var ErrUnknownEntryPoint = errors.New("mod: unknown entry point")

// Factory constructs the extension behind a manifest's entry point.
type Factory func(manifest *Manifest) (Extension, error)

// Factories maps entry-point names to the compiled-in code implementing them.
type Factories struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewFactories returns an empty factory set.
func NewFactories() *Factories {
	return &Factories{factories: map[string]Factory{}}
}

// Register installs a factory. Returns an error if the entry point already exists.
func (f *Factories) Register(entryPoint string, factory Factory) error {
	if entryPoint == "" {
		return fmt.Errorf("mod: entry point is required")
	}
	if factory == nil {
		return fmt.Errorf("mod: factory is required for %s", entryPoint)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.factories[entryPoint]; exists {
		return fmt.Errorf("mod: entry point %s already registered", entryPoint)
	}
	f.factories[entryPoint] = factory
	return nil
}

// MustRegister panics if registration fails.
func (f *Factories) MustRegister(entryPoint string, factory Factory) {
	if err := f.Register(entryPoint, factory); err != nil {
		panic(err)
	}
}

// Build constructs the extension for the manifest's entry point.
func (f *Factories) Build(manifest *Manifest) (Extension, error) {
	if manifest == nil {
		return nil, fmt.Errorf("mod: manifest is required")
	}
	f.mu.RLock()
	factory, ok := f.factories[manifest.EntryPoint]
	f.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownEntryPoint, manifest.EntryPoint)
	}
	ext, err := factory(manifest)
	if err != nil {
		return nil, err
	}
	if ext == nil {
		return nil, fmt.Errorf("mod: factory for %s returned nil", manifest.EntryPoint)
	}
	return ext, nil
}

// EntryPoints returns a sorted list of registered entry-point names.
func (f *Factories) EntryPoints() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	names := make([]string, 0, len(f.factories))
	for name := range f.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
