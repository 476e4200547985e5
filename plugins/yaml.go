package plugins

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kingrea/modhost/internal/mod"
)

// ManifestFile pairs a parsed manifest with its on-disk source.
type ManifestFile struct {
	Manifest mod.Manifest
	Path     string
}

// ParseManifestYAML decodes and validates a single manifest payload.
func ParseManifestYAML(data []byte) (mod.Manifest, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return mod.Manifest{}, fmt.Errorf("plugin: manifest payload is empty")
	}
	var manifest mod.Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return mod.Manifest{}, fmt.Errorf("plugin: decode manifest: %w", err)
	}
	if err := manifest.Validate(); err != nil {
		return mod.Manifest{}, err
	}
	return manifest.Normalized(), nil
}

// LoadManifestFile reads a YAML file from disk and returns the parsed manifest.
func LoadManifestFile(path string) (ManifestFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return ManifestFile{}, fmt.Errorf("plugin: stat %s: %w", path, err)
	}
	if info.IsDir() {
		return ManifestFile{}, fmt.Errorf("plugin: %s is a directory", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ManifestFile{}, fmt.Errorf("plugin: read %s: %w", path, err)
	}
	manifest, err := ParseManifestYAML(data)
	if err != nil {
		return ManifestFile{}, fmt.Errorf("plugin: %s: %w", path, err)
	}
	return ManifestFile{Manifest: manifest, Path: filepath.Clean(path)}, nil
}

// LoadManifestDir scans a directory for *.yaml manifests and returns them
// sorted by path. Missing directories are treated as "no mods" to simplify
// startup.
func LoadManifestDir(dir string) ([]ManifestFile, error) {
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
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !isYAMLFile(name) {
			continue
		}
		file, err := LoadManifestFile(filepath.Join(trimmed, name))
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	if len(files) == 0 {
		return nil, nil
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func isYAMLFile(name string) bool {
	lower := strings.ToLower(strings.TrimSpace(name))
	return strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml")
}
