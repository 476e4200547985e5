package mod

import (
	"iter"
	"reflect"
)

// Extension is implemented by every mod's entry type.
type Extension interface {
	Entry(helper Helper) error
}

// Helper is the host surface handed to a mod when its entry runs.
type Helper interface {
	// Manifest returns the manifest of the mod receiving this helper.
	Manifest() *Manifest
	// Registry exposes a read-only view of every loaded mod.
	Registry() Lookup
	// Logf writes a line to the host log, prefixed with the mod's name.
	Logf(format string, args ...any)
	// Log writes a line to the host log.
	//
	// Deprecated: use Logf.
	Log(message string)
}

// Lookup is the read-only part of the mod registry.
type Lookup interface {
	Get(id string) (*Manifest, bool)
	IsLoaded(id string) bool
	Manifests() iter.Seq[*Manifest]
}

// Instance is the runtime handle of one loaded mod.
type Instance struct {
	Manifest  *Manifest
	Extension Extension
	// ModuleID is the import path owning the mod's code. Empty for mods that
	// ship no code of their own.
	ModuleID string
	// Source records where the manifest was read from.
	Source string
}

// NewInstance pairs a manifest with the live extension built for it and
// derives the module identity from the extension's concrete type.
func NewInstance(manifest *Manifest, ext Extension) *Instance {
	return &Instance{
		Manifest:  manifest,
		Extension: ext,
		ModuleID:  ModuleOf(ext),
	}
}

// ModuleOf returns the import path of the package declaring v's type.
// Pointer, slice, array, map and channel types are unwrapped to their
// element. Unnamed and builtin types yield "".
func ModuleOf(v any) string {
	if v == nil {
		return ""
	}
	return TypeModule(reflect.TypeOf(v))
}

// TypeModule is ModuleOf for a reflect.Type.
func TypeModule(t reflect.Type) string {
	for t != nil {
		if pkg := t.PkgPath(); pkg != "" {
			return pkg
		}
		switch t.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Array, reflect.Map, reflect.Chan:
			t = t.Elem()
		default:
			return ""
		}
	}
	return ""
}
