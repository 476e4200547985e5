package tui

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/modhost/internal/compat"
	"github.com/kingrea/modhost/internal/config"
	"github.com/kingrea/modhost/internal/deprecation"
	"github.com/kingrea/modhost/internal/logbook"
	"github.com/kingrea/modhost/internal/mod"
	"github.com/kingrea/modhost/internal/mods"
	"github.com/kingrea/modhost/internal/registry"
	"github.com/kingrea/modhost/internal/semver"
	"github.com/kingrea/modhost/plugins"
)

func manifestFile(id, name, version, entry string) plugins.ManifestFile {
	return plugins.ManifestFile{
		Manifest: mod.Manifest{ID: id, Name: name, Version: semver.MustParse(version), EntryPoint: entry},
		Path:     "/mods/" + id + ".yaml",
	}
}

type testApp struct {
	*App
	cfg     *config.Config
	journal *logbook.Logbook
}

func newTestApp(t *testing.T) testApp {
	t.Helper()
	projectDir := t.TempDir()
	if err := config.InitHostDir(projectDir); err != nil {
		t.Fatalf("InitHostDir: %v", err)
	}
	cfg, err := config.NewConfig(projectDir)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	journal, err := logbook.New(cfg.JournalPath())
	if err != nil {
		t.Fatalf("logbook: %v", err)
	}
	eval, err := compat.New([]compat.Rule{{ID: "Old.Mod", UpperVersion: "2.0", Reason: "broken save format"}})
	if err != nil {
		t.Fatalf("compat.New: %v", err)
	}
	factories := mod.NewFactories()
	mods.RegisterBuiltins(factories)
	reg := registry.New()
	deprecations := deprecation.NewManager(reg, nil, journal)
	report := plugins.NewLoader(reg, eval, factories,
		plugins.WithJournal(journal),
		plugins.WithDeprecations(deprecations),
	).Load([]plugins.ManifestFile{
		manifestFile("Saver", "Saver", "1.0", "autosave"),
		manifestFile("Legacy.Chat", "Legacy Chat", "0.9", "legacychat"),
		manifestFile("Old.Mod", "Old Mod", "1.5", ""),
	})
	app := NewApp(cfg, reg, report, WithLogbook(journal), WithDeprecations(deprecations))
	return testApp{App: app, cfg: cfg, journal: journal}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, app *App, msg tea.Msg) tea.Cmd {
	t.Helper()
	model, cmd := app.Update(msg)
	if model != app {
		t.Fatalf("unexpected model %T", model)
	}
	return cmd
}

func TestNewAppListsLoadedAndSkippedMods(t *testing.T) {
	app := newTestApp(t)
	if got := len(app.loaded.Items()); got != 2 {
		t.Fatalf("loaded items = %d, want 2", got)
	}
	if got := len(app.skipped.Items()); got != 1 {
		t.Fatalf("skipped items = %d, want 1", got)
	}
	first := app.loaded.Items()[0].(modItem)
	if first.manifest.ID != "Saver" || !strings.HasSuffix(first.moduleID, "/internal/mods/autosave") {
		t.Fatalf("first loaded item = %+v", first)
	}
	blocked := app.skipped.Items()[0].(modItem)
	if !blocked.blocked || !strings.Contains(blocked.reason, "broken save format") {
		t.Fatalf("skipped item = %+v", blocked)
	}
}

func TestTabSwitchesFocusAndDetail(t *testing.T) {
	app := newTestApp(t)
	update(t, app.App, tea.WindowSizeMsg{Width: 140, Height: 50})
	if !strings.Contains(app.renderDetail(60), "Loaded") {
		t.Fatalf("detail should describe the loaded selection")
	}
	update(t, app.App, key("tab"))
	if app.focus != focusSkipped {
		t.Fatalf("tab should move focus to skipped list")
	}
	if detail := app.renderDetail(60); !strings.Contains(detail, "Incompatible") || !strings.Contains(detail, "Old.Mod") {
		t.Fatalf("detail = %q", detail)
	}
	update(t, app.App, key("tab"))
	if app.focus != focusLoaded {
		t.Fatalf("tab should cycle back to loaded list")
	}
}

func TestDisableSelectedPersists(t *testing.T) {
	app := newTestApp(t)
	update(t, app.App, key("d"))
	if !strings.Contains(app.statusMsg, "Saver disabled") {
		t.Fatalf("status = %q", app.statusMsg)
	}
	reloaded, err := config.NewConfig(app.cfg.ProjectDir)
	if err != nil {
		t.Fatalf("reload config: %v", err)
	}
	if !reloaded.IsDisabled("Saver") {
		t.Fatalf("disabled list = %v", reloaded.Project.Mods.Disabled)
	}
}

func TestLogRefreshAndView(t *testing.T) {
	app := newTestApp(t)
	update(t, app.App, tea.WindowSizeMsg{Width: 160, Height: 60})
	msg := app.Init()()
	refresh, ok := msg.(logRefreshMsg)
	if !ok {
		t.Fatalf("Init should read the journal, got %T", msg)
	}
	if cmd := update(t, app.App, refresh); cmd == nil {
		t.Fatalf("log refresh should schedule the next tick")
	}
	if app.logTotal == 0 {
		t.Fatalf("journal tail should not be empty")
	}
	view := app.View()
	for _, want := range []string{"MODHOST", "Saver", "Deprecations (1)", "Legacy Chat uses deprecated code", filepath.Base(app.journal.Path())} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q", want)
		}
	}
}

func TestQuitKeys(t *testing.T) {
	for _, k := range []string{"q", "ctrl+c"} {
		app := newTestApp(t)
		cmd := update(t, app.App, key(k))
		if cmd == nil {
			t.Fatalf("%s: expected quit command", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Fatalf("%s: expected tea.QuitMsg", k)
		}
	}
}
