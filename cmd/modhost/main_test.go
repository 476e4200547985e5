package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kingrea/modhost/internal/config"
	"github.com/kingrea/modhost/internal/mod"
	"github.com/kingrea/modhost/internal/registry"
	"github.com/kingrea/modhost/internal/semver"
)

func writeProject(t *testing.T) string {
	t.Helper()
	projectDir := t.TempDir()
	modsDir := filepath.Join(projectDir, "mods")
	if err := os.MkdirAll(modsDir, 0o755); err != nil {
		t.Fatal(err)
	}
	manifest := "id: Saver\nname: Saver\nversion: 1.0\nentry_point: autosave\n"
	if err := os.WriteFile(filepath.Join(modsDir, "saver.yaml"), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}
	return projectDir
}

func TestRunReturnsErrorForUnknownMod(t *testing.T) {
	projectDir := writeProject(t)

	err := run(projectDir, false, "Savr")
	if err == nil {
		t.Fatal("expected an error for a mod that is not loaded")
	}
	if !strings.Contains(err.Error(), "Savr is not loaded") || !strings.Contains(err.Error(), "did you mean Saver?") {
		t.Fatalf("error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(projectDir, config.HostDir, "logs", "modhost.log"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "loaded Saver") {
		t.Fatalf("log missing load entries:\n%s", data)
	}
}

func TestRunShowsLoadedMod(t *testing.T) {
	if err := run(writeProject(t), false, "Saver"); err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestShowModPrintsManifest(t *testing.T) {
	reg := registry.New()
	if err := reg.Register(&mod.Instance{
		Manifest: &mod.Manifest{ID: "Saver", Name: "Saver", Version: semver.MustParse("1.2")},
	}); err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	if err := showMod(&out, reg, "Saver"); err != nil {
		t.Fatalf("showMod: %v", err)
	}
	if !strings.Contains(out.String(), "id:           Saver") {
		t.Fatalf("output = %q", out.String())
	}
	if err := showMod(&out, reg, "Other"); err == nil {
		t.Fatal("expected error for unknown mod")
	}
}
