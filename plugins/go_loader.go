package plugins

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/kingrea/modhost/internal/mod"
	"github.com/kingrea/modhost/internal/semver"
)

// manifestScriptFunc is the function a Go manifest script must define:
//
//	func ModManifests() ([]map[string]any, error)
//
// Each map uses the same keys as a YAML manifest.
const manifestScriptFunc = "ModManifests"

// LoadGoManifestDir interprets every .go script in dir and returns the
// manifests they declare, sorted by path.
func LoadGoManifestDir(dir string) ([]ManifestFile, error) {
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(trimmed)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("plugin: read %s: %w", trimmed, err)
	}
	var files []ManifestFile
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".go" {
			continue
		}
		declared, err := LoadManifestScript(filepath.Join(trimmed, entry.Name()))
		if err != nil {
			return nil, err
		}
		files = append(files, declared...)
	}
	sort.SliceStable(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// LoadManifestScript interprets one Go manifest script. Manifests are
// addressed as "<path>#<n>", counting from 1.
func LoadManifestScript(path string) ([]ManifestFile, error) {
	raws, err := runManifestScript(path)
	if err != nil {
		return nil, err
	}
	files := make([]ManifestFile, 0, len(raws))
	for idx, raw := range raws {
		source := fmt.Sprintf("%s#%d", filepath.Clean(path), idx+1)
		manifest, err := manifestFromValues(raw)
		if err != nil {
			return nil, fmt.Errorf("plugin: %s: %w", source, err)
		}
		files = append(files, ManifestFile{Manifest: manifest, Path: source})
	}
	return files, nil
}

func runManifestScript(path string) ([]map[string]any, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("plugin: read %s: %w", path, err)
	}
	if strings.TrimSpace(string(code)) == "" {
		return nil, fmt.Errorf("plugin: %s is empty", path)
	}
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("plugin: %s: load stdlib symbols: %w", path, err)
	}
	if _, err := i.EvalPath(path); err != nil {
		return nil, fmt.Errorf("plugin: interpret %s: %w", path, err)
	}
	fn, err := i.Eval(manifestScriptFunc)
	if err != nil {
		return nil, fmt.Errorf("plugin: %s must define %s() ([]map[string]any, error): %w", path, manifestScriptFunc, err)
	}
	raws, err := callManifestFunc(fn)
	if err != nil {
		return nil, fmt.Errorf("plugin: %s: %s: %w", path, manifestScriptFunc, err)
	}
	return raws, nil
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// callManifestFunc calls the script's manifest function, falling back to
// reflection when the interpreted func does not assert to the compiled type.
func callManifestFunc(fn reflect.Value) ([]map[string]any, error) {
	if !fn.IsValid() || fn.Kind() != reflect.Func {
		return nil, fmt.Errorf("is not a function")
	}
	if declare, ok := fn.Interface().(func() ([]map[string]any, error)); ok {
		return declare()
	}
	t := fn.Type()
	if t.Kind() != reflect.Func || t.NumIn() != 0 || t.NumOut() != 2 ||
		t.Out(0).Kind() != reflect.Slice || t.Out(0).Elem().Kind() != reflect.Map ||
		t.Out(0).Elem().Key().Kind() != reflect.String || !t.Out(1).Implements(errorType) {
		return nil, fmt.Errorf("has type %s, want func() ([]map[string]any, error)", t)
	}
	out := fn.Call(nil)
	if !out[1].IsNil() {
		return nil, out[1].Interface().(error)
	}
	list := out[0]
	raws := make([]map[string]any, 0, list.Len())
	for i := 0; i < list.Len(); i++ {
		entry := list.Index(i)
		raw := make(map[string]any, entry.Len())
		iter := entry.MapRange()
		for iter.Next() {
			raw[iter.Key().String()] = iter.Value().Interface()
		}
		raws = append(raws, raw)
	}
	return raws, nil
}

// manifestFromValues fills a manifest from the keys a script returned.
// Unknown keys are rejected.
func manifestFromValues(raw map[string]any) (mod.Manifest, error) {
	var m mod.Manifest
	for key, value := range raw {
		var err error
		switch key {
		case "id":
			m.ID, err = stringValue(key, value)
		case "name":
			m.Name, err = stringValue(key, value)
		case "author":
			m.Author, err = stringValue(key, value)
		case "description":
			m.Description, err = stringValue(key, value)
		case "entry_point":
			m.EntryPoint, err = stringValue(key, value)
		case "version":
			m.Version, err = versionValue(key, value)
		case "minimum_host_version":
			m.MinimumHostVersion, err = versionValue(key, value)
		case "dependencies":
			m.Dependencies, err = stringsValue(key, value)
		default:
			err = fmt.Errorf("unknown manifest key %q", key)
		}
		if err != nil {
			return mod.Manifest{}, err
		}
	}
	if err := m.Validate(); err != nil {
		return mod.Manifest{}, err
	}
	return m.Normalized(), nil
}

func stringValue(key string, value any) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string, got %T", key, value)
	}
	return s, nil
}

// versionValue accepts a string or a bare number such as 1.5.
func versionValue(key string, value any) (semver.Version, error) {
	var text string
	switch v := value.(type) {
	case string:
		text = v
	case int, int64, float64:
		text = fmt.Sprint(v)
	default:
		return semver.Version{}, fmt.Errorf("%s must be a version string, got %T", key, value)
	}
	if strings.TrimSpace(text) == "" {
		return semver.Version{}, nil
	}
	parsed, err := semver.Parse(text)
	if err != nil {
		return semver.Version{}, fmt.Errorf("%s: %w", key, err)
	}
	return parsed, nil
}

func stringsValue(key string, value any) ([]string, error) {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice {
		return nil, fmt.Errorf("%s must be a list of strings, got %T", key, value)
	}
	out := make([]string, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		s, ok := rv.Index(i).Interface().(string)
		if !ok {
			return nil, fmt.Errorf("%s[%d] must be a string", key, i)
		}
		out = append(out, s)
	}
	return out, nil
}

// DiscoverManifests returns the YAML manifests of dir followed by the
// manifests declared by its Go scripts.
func DiscoverManifests(dir string) ([]ManifestFile, error) {
	yamlFiles, err := LoadManifestDir(dir)
	if err != nil {
		return nil, err
	}
	scripted, err := LoadGoManifestDir(dir)
	if err != nil {
		return nil, err
	}
	return append(yamlFiles, scripted...), nil
}
