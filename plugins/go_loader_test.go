package plugins

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const goManifestSource = `package main

func ModManifests() ([]map[string]any, error) {
	return []map[string]any{
		{
			"id":          "scripted.Autosave",
			"name":        "Scripted Autosave",
			"version":     "2.1.0",
			"entry_point": "autosave",
		},
		{
			"id":                   "scripted.Content",
			"name":                 " Scripted Content ",
			"version":              1.5,
			"minimum_host_version": "1.0-beta",
			"dependencies":         []string{"scripted.Autosave"},
		},
	}, nil
}`

func TestLoadGoManifestDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "mods.go"), []byte(goManifestSource), 0644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	files, err := LoadGoManifestDir(dir)
	if err != nil {
		t.Fatalf("load go manifests: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 manifests, got %d", len(files))
	}
	if files[0].Manifest.ID != "scripted.Autosave" || files[0].Manifest.EntryPoint != "autosave" {
		t.Fatalf("unexpected manifest: %+v", files[0].Manifest)
	}
	content := files[1]
	if content.Manifest.Version.Canonical() != "1.5.0" || content.Manifest.MinimumHostVersion.Canonical() != "1.0.0-beta" {
		t.Fatalf("unexpected versions: %s / %s", content.Manifest.Version, content.Manifest.MinimumHostVersion)
	}
	if content.Manifest.Name != "Scripted Content" || len(content.Manifest.Dependencies) != 1 {
		t.Fatalf("unexpected manifest: %+v", content.Manifest)
	}
	if content.Path != filepath.Join(dir, "mods.go")+"#2" {
		t.Fatalf("unexpected path %s", content.Path)
	}
}

func TestLoadGoManifestDirMissingFunc(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.go"), []byte("package main\n"), 0644); err != nil {
		t.Fatalf("write broken script: %v", err)
	}
	if _, err := LoadGoManifestDir(dir); err == nil {
		t.Fatalf("expected error for missing ModManifests function")
	}
}

func TestLoadManifestScriptRejectsBadValues(t *testing.T) {
	tests := map[string]string{
		"unknown key":   `{"id": "a", "name": "A", "version": "1.0", "skill": "x"}`,
		"bad version":   `{"id": "a", "name": "A", "version": "banana"}`,
		"non-string id": `{"id": 7, "name": "A", "version": "1.0"}`,
		"missing name":  `{"id": "a", "version": "1.0"}`,
		"bad deps":      `{"id": "a", "name": "A", "version": "1.0", "dependencies": "b"}`,
	}
	for name, literal := range tests {
		t.Run(name, func(t *testing.T) {
			source := "package main\n\nfunc ModManifests() ([]map[string]any, error) {\n\treturn []map[string]any{" + literal + "}, nil\n}\n"
			path := filepath.Join(t.TempDir(), "bad.go")
			if err := os.WriteFile(path, []byte(source), 0644); err != nil {
				t.Fatalf("write script: %v", err)
			}
			if _, err := LoadManifestScript(path); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadManifestScriptWrongSignature(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wrong.go")
	source := "package main\n\nfunc ModManifests() []string { return nil }\n"
	if err := os.WriteFile(path, []byte(source), 0644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	if _, err := LoadManifestScript(path); err == nil || !strings.Contains(err.Error(), "want func()") {
		t.Fatalf("expected signature error, got %v", err)
	}
}

func TestDiscoverManifestsOrdersYAMLBeforeScripts(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "z.yaml"), []byte(sampleManifest), 0644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "a.go"), []byte(goManifestSource), 0644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	files, err := DiscoverManifests(dir)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(files) != 3 || files[0].Manifest.ID != "Pathoschild.ChestsAnywhere" {
		t.Fatalf("unexpected discovery order: %+v", files)
	}
}
