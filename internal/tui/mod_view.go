package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/modhost/internal/deprecation"
	"github.com/kingrea/modhost/internal/mod"
	"github.com/kingrea/modhost/internal/registry"
	"github.com/kingrea/modhost/plugins"
)

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
	titleStyle        = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	mutedStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	labelStyleLoaded  = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	labelStyleBlocked = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	labelStyleWarn    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801")).Bold(true)
	labelStyleSkipped = lipgloss.NewStyle().Foreground(lipgloss.Color("#999999"))
	detailTextStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0"))
)

// modItem implements list.Item for both the loaded and the skipped list.
type modItem struct {
	manifest mod.Manifest
	source   string
	moduleID string
	reason   string
	blocked  bool
	loaded   bool
}

func (i modItem) Title() string { return i.manifest.Label() }

func (i modItem) Description() string {
	if i.reason != "" {
		return i.reason
	}
	parts := []string{i.manifest.Key()}
	if author := strings.TrimSpace(i.manifest.Author); author != "" {
		parts = append(parts, "by "+author)
	}
	return strings.Join(parts, " · ")
}

func (i modItem) FilterValue() string { return i.manifest.Key() + " " + i.manifest.Name }

// loadedItems lists the registry's mods in registration order, annotating
// those whose entry failed during the load pass.
func loadedItems(reg *registry.Registry, report plugins.Report) []list.Item {
	failed := make(map[*mod.Instance]string, len(report.Failed))
	for _, f := range report.Failed {
		for _, inst := range report.Loaded {
			if inst.Source == f.Path && inst.Manifest.Key() == f.Manifest.Key() {
				failed[inst] = f.Reason
			}
		}
	}
	var instances []*mod.Instance
	if reg != nil {
		instances = reg.Instances()
	} else {
		instances = report.Loaded
	}
	items := make([]list.Item, 0, len(instances))
	for _, inst := range instances {
		item := modItem{
			manifest: *inst.Manifest,
			source:   inst.Source,
			moduleID: inst.ModuleID,
			loaded:   true,
		}
		if reason, ok := failed[inst]; ok {
			item.reason = "entry failed: " + reason
		}
		items = append(items, item)
	}
	return items
}

func skippedItems(report plugins.Report) []list.Item {
	items := make([]list.Item, 0, len(report.Skipped))
	for _, s := range report.Skipped {
		items = append(items, modItem{
			manifest: s.Manifest,
			source:   s.Path,
			reason:   s.Reason,
			blocked:  s.Rule != nil,
		})
	}
	return items
}

func (a *App) renderDetail(width int) string {
	item, ok := a.selectedMod()
	if !ok {
		return mutedStyle.Render("Select a mod to see its details.")
	}
	m := item.manifest
	lines := []string{
		titleStyle.Render(m.Label()) + "  " + statusLabel(item),
		"",
		fmt.Sprintf("ID: %s", m.Key()),
	}
	add := func(label, value string) {
		if value = strings.TrimSpace(value); value != "" {
			lines = append(lines, fmt.Sprintf("%s: %s", label, value))
		}
	}
	add("Author", m.Author)
	add("Entry point", m.EntryPoint)
	if !m.MinimumHostVersion.IsZero() {
		add("Requires host", m.MinimumHostVersion.String())
	}
	if len(m.Dependencies) > 0 {
		add("Dependencies", strings.Join(m.Dependencies, ", "))
	}
	add("Code", item.moduleID)
	if item.source != "" {
		add("Source", filepath.Base(item.source))
	}
	if desc := strings.TrimSpace(m.Description); desc != "" {
		lines = append(lines, "", detailTextStyle.Render(desc))
	}
	if item.reason != "" {
		lines = append(lines, "", labelStyleWarn.Render(item.reason))
	}
	return lipgloss.NewStyle().Width(max(20, width)).Render(strings.Join(lines, "\n"))
}

func statusLabel(item modItem) string {
	switch {
	case item.loaded && item.reason != "":
		return labelStyleWarn.Render("Failed")
	case item.loaded:
		return labelStyleLoaded.Render("Loaded")
	case item.blocked:
		return labelStyleBlocked.Render("Incompatible")
	default:
		return labelStyleSkipped.Render("Skipped")
	}
}

func (a *App) renderDeprecations() string {
	if a.deprecations == nil {
		return ""
	}
	warnings := a.deprecations.Warnings()
	if len(warnings) == 0 {
		return ""
	}
	lines := []string{titleStyle.Render(fmt.Sprintf("Deprecations (%d)", len(warnings)))}
	for _, w := range warnings {
		style := detailTextStyle
		if w.Level == deprecation.PendingRemoval {
			style = labelStyleWarn
		}
		lines = append(lines, style.Render(w.Message()))
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func (a *App) renderLogPanel() string {
	if a.logbook == nil || len(a.logLines) == 0 {
		return ""
	}
	fileName := filepath.Base(a.logbook.Path())
	if fileName == "." || fileName == "" {
		fileName = "log"
	}
	head := titleStyle.Render(fmt.Sprintf("LOG · %s (%d)", fileName, a.logTotal))
	body := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render(strings.Join(a.logLines, "\n"))
	return panelStyle.Render(fmt.Sprintf("%s\n%s", head, body))
}
