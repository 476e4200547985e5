// cmd/modhost/main.go
//
// This is the entry point for the modhost CLI.
// When you run `modhost` from a project directory, this is what executes.
//
// Flow:
// 1. Initialize .modhost/ and load its config
// 2. Discover manifests, gate them and load the mods
// 3. Print a summary (-plain, -show) or launch the TUI

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/kingrea/modhost/internal/config"
	"github.com/kingrea/modhost/internal/deprecation"
	"github.com/kingrea/modhost/internal/logbook"
	"github.com/kingrea/modhost/internal/logging"
	"github.com/kingrea/modhost/internal/mod"
	"github.com/kingrea/modhost/internal/mods"
	"github.com/kingrea/modhost/internal/registry"
	"github.com/kingrea/modhost/internal/tui"
	"github.com/kingrea/modhost/plugins"
)

func main() {
	projectDir := flag.String("project", "", "path to the project directory (defaults to cwd)")
	plain := flag.Bool("plain", false, "print the load report instead of starting the TUI")
	show := flag.String("show", "", "print the manifest of one loaded mod")
	flag.Parse()

	if err := run(*projectDir, *plain, strings.TrimSpace(*show)); err != nil {
		die("%v", err)
	}
}

// run owns every resource it opens, so deferred cleanup happens before main
// exits with an error.
func run(projectDir string, plain bool, show string) error {
	project := projectDir
	if project == "" {
		var err error
		project, err = os.Getwd()
		if err != nil {
			return fmt.Errorf("determine working directory: %w", err)
		}
	}
	absoluteProject, err := filepath.Abs(project)
	if err != nil {
		return fmt.Errorf("resolve project dir: %w", err)
	}
	if err := config.InitHostDir(absoluteProject); err != nil {
		return fmt.Errorf("init %s: %w", config.HostDir, err)
	}
	cfg, err := config.NewConfig(absoluteProject)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(absoluteProject)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer logger.Close()
	journal, err := logbook.New(cfg.JournalPath())
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	journal.Info("Session opened · host %s", cfg.HostVersion())

	reg := registry.New(registry.WithLogger(logger))
	deprecations := deprecation.NewManager(reg, logger, journal)
	factories := mod.NewFactories()
	mods.RegisterBuiltins(factories)
	report, err := plugins.LoadProject(cfg, reg, factories,
		plugins.WithLogger(logger),
		plugins.WithJournal(journal),
		plugins.WithDeprecations(deprecations),
	)
	if err != nil {
		return fmt.Errorf("load mods: %w", err)
	}

	switch {
	case show != "":
		return showMod(os.Stdout, reg, show)
	case plain:
		printReport(os.Stdout, reg, report)
		return nil
	}
	p := tea.NewProgram(
		tui.NewApp(cfg, reg, report, tui.WithLogbook(journal), tui.WithDeprecations(deprecations)),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run TUI: %w", err)
	}
	return nil
}

func showMod(w io.Writer, reg *registry.Registry, id string) error {
	manifest, ok := reg.Get(id)
	if !ok {
		msg := fmt.Sprintf("mod %s is not loaded", id)
		if suggestions := reg.Suggest(id, 3); len(suggestions) > 0 {
			msg += fmt.Sprintf("; did you mean %s?", strings.Join(suggestions, ", "))
		}
		return errors.New(msg)
	}
	fmt.Fprintf(w, "%s\n", manifest.Label())
	fmt.Fprintf(w, "  id:           %s\n", manifest.Key())
	if manifest.Author != "" {
		fmt.Fprintf(w, "  author:       %s\n", manifest.Author)
	}
	if manifest.EntryPoint != "" {
		fmt.Fprintf(w, "  entry point:  %s\n", manifest.EntryPoint)
	}
	if !manifest.MinimumHostVersion.IsZero() {
		fmt.Fprintf(w, "  requires:     host %s\n", manifest.MinimumHostVersion)
	}
	if len(manifest.Dependencies) > 0 {
		fmt.Fprintf(w, "  dependencies: %s\n", strings.Join(manifest.Dependencies, ", "))
	}
	if manifest.Description != "" {
		fmt.Fprintf(w, "\n%s\n", manifest.Description)
	}
	return nil
}

func printReport(w io.Writer, reg *registry.Registry, report plugins.Report) {
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("MOD", "VERSION", "STATUS", "DETAIL").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})
	failed := make(map[string]string, len(report.Failed))
	for _, f := range report.Failed {
		failed[f.Path] = f.Reason
	}
	for _, inst := range reg.Instances() {
		status, detail := "loaded", inst.ModuleID
		if reason, ok := failed[inst.Source]; ok {
			status, detail = "failed", reason
		}
		t.Row(inst.Manifest.Key(), inst.Manifest.Version.String(), status, detail)
	}
	for _, s := range report.Skipped {
		status := "skipped"
		if s.Rule != nil {
			status = "incompatible"
		}
		t.Row(s.Manifest.Key(), s.Manifest.Version.String(), status, s.Reason)
	}
	fmt.Fprintln(w, t.Render())
	fmt.Fprintf(w, "%d loaded · %d skipped · %d failed\n", len(report.Loaded), len(report.Skipped), len(report.Failed))
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
