package registry

import (
	"reflect"
	"runtime"
	"strings"

	"github.com/kingrea/modhost/internal/mod"
)

// initialStackDepth sizes the first runtime.Callers buffer; deeper stacks
// grow it until the whole stack fits.
const initialStackDepth = 32

// ResolveFromModule returns the display name of the mod whose module
// identity is exactly moduleID.
func (r *Registry) ResolveFromModule(moduleID string) (string, bool) {
	if moduleID == "" {
		return "", false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.modules[moduleID]
	return name, ok
}

// ResolveFromPackage returns the display name of the mod owning pkgPath:
// the package itself or its nearest registered parent path.
func (r *Registry) ResolveFromPackage(pkgPath string) (string, bool) {
	for path := pkgPath; path != ""; path = parentPath(path) {
		if name, ok := r.ResolveFromModule(path); ok {
			return name, true
		}
	}
	return "", false
}

// ResolveFromType returns the display name of the mod declaring t.
func (r *Registry) ResolveFromType(t reflect.Type) (string, bool) {
	if t == nil {
		return "", false
	}
	return r.ResolveFromPackage(mod.TypeModule(t))
}

// ResolveFromCallable returns the display name of the mod declaring the
// dynamic type of c's bound target. Callables without a target are never
// attributed. An extension held in an interface, or a mod type embedding a
// host type, resolves to the mod because only the target's type is used.
func (r *Registry) ResolveFromCallable(c mod.Callable) (string, bool) {
	if !c.Bound() {
		return "", false
	}
	return r.ResolveFromType(reflect.TypeOf(c.Target))
}

// ResolveFromCallStack walks the caller's stack from the innermost frame
// outward and returns the display name of the first mod owning a frame.
func (r *Registry) ResolveFromCallStack() (string, bool) {
	for _, fn := range callers() {
		if name, ok := r.ResolveFromPackage(symbolPackage(fn)); ok {
			return name, true
		}
	}
	return "", false
}

// callers returns the function symbols of the calling goroutine's stack,
// innermost first, excluding runtime.Callers and this package's frames
// up to and including the caller of callers.
func callers() []string {
	pcs := make([]uintptr, initialStackDepth)
	for {
		n := runtime.Callers(3, pcs)
		if n < len(pcs) {
			pcs = pcs[:n]
			break
		}
		pcs = make([]uintptr, len(pcs)*2)
	}
	if len(pcs) == 0 {
		return nil
	}
	frames := runtime.CallersFrames(pcs)
	var out []string
	for {
		frame, more := frames.Next()
		if frame.Function != "" {
			out = append(out, frame.Function)
		}
		if !more {
			break
		}
	}
	return out
}

// symbolPackage extracts the import path from a runtime function symbol
// such as "example.com/mods/autosave.(*Mod).Entry-fm" or
// "gopkg.in/yaml%2ev3.Marshal".
func symbolPackage(symbol string) string {
	if i := strings.IndexByte(symbol, '['); i >= 0 {
		symbol = symbol[:i]
	}
	slash := strings.LastIndexByte(symbol, '/')
	dot := strings.IndexByte(symbol[slash+1:], '.')
	if dot < 0 {
		return ""
	}
	return strings.ReplaceAll(symbol[:slash+1+dot], "%2e", ".")
}

func parentPath(path string) string {
	idx := strings.LastIndexByte(path, '/')
	if idx <= 0 {
		return ""
	}
	return path[:idx]
}
