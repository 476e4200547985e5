// internal/tui/app.go
//
// This is the TUI for inspecting the mods a host session loaded.
// It uses bubbletea, which follows The Elm Architecture:
//
// 1. Model: the loaded and skipped mods plus the journal tail
// 2. Update: key presses and refresh ticks change the model
// 3. View: lipgloss renders the model to a string
//
// The flow is: User Input -> Message -> Update -> New Model -> View -> Screen

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/modhost/internal/config"
	"github.com/kingrea/modhost/internal/deprecation"
	"github.com/kingrea/modhost/internal/logbook"
	"github.com/kingrea/modhost/internal/registry"
	"github.com/kingrea/modhost/plugins"
)

const (
	logRefreshInterval = 3 * time.Second
	logTailLines       = 8
)

type listFocus int

const (
	focusLoaded listFocus = iota
	focusSkipped
)

type logRefreshMsg struct {
	lines []string
	total int
}

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithLogbook shows the tail of journal under the mod lists.
func WithLogbook(journal *logbook.Logbook) AppOption {
	return func(a *App) { a.logbook = journal }
}

// WithDeprecations lists the deprecation warnings raised by mods.
func WithDeprecations(m *deprecation.Manager) AppOption {
	return func(a *App) { a.deprecations = m }
}

// App is the main application model. In bubbletea, this holds ALL your state.
type App struct {
	config       *config.Config
	registry     *registry.Registry
	logbook      *logbook.Logbook
	deprecations *deprecation.Manager

	loaded  list.Model
	skipped list.Model
	focus   listFocus

	logLines  []string
	logTotal  int
	statusMsg string

	width  int
	height int
}

// NewApp builds the model from the result of a load pass. reg must be the
// registry the report's mods were registered into.
func NewApp(cfg *config.Config, reg *registry.Registry, report plugins.Report, opts ...AppOption) *App {
	loaded := list.New(loadedItems(reg, report), list.NewDefaultDelegate(), 0, 0)
	loaded.Title = "Loaded mods"
	loaded.SetShowStatusBar(false)
	loaded.SetShowHelp(false)

	skipped := list.New(skippedItems(report), list.NewDefaultDelegate(), 0, 0)
	skipped.Title = "Skipped mods"
	skipped.SetShowStatusBar(false)
	skipped.SetShowHelp(false)
	skipped.SetFilteringEnabled(false)

	app := &App{
		config:   cfg,
		registry: reg,
		loaded:   loaded,
		skipped:  skipped,
		focus:    focusLoaded,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	app.statusMsg = fmt.Sprintf("%d loaded · %d skipped · %d failed", len(report.Loaded), len(report.Skipped), len(report.Failed))
	return app
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return a.fetchLog()
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resizeLists()
		return a, nil

	case logRefreshMsg:
		a.logLines = msg.lines
		a.logTotal = msg.total
		return a, a.scheduleLogRefresh()

	case tea.KeyMsg:
		if a.activeList().FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return a, tea.Quit
		case "tab":
			if a.focus == focusLoaded && len(a.skipped.Items()) > 0 {
				a.focus = focusSkipped
			} else {
				a.focus = focusLoaded
			}
			return a, nil
		case "d":
			a.disableSelected()
			return a, nil
		case "r":
			a.statusMsg = "Refreshing journal..."
			return a, a.fetchLog()
		}
	}

	var cmd tea.Cmd
	if a.focus == focusSkipped {
		a.skipped, cmd = a.skipped.Update(msg)
	} else {
		a.loaded, cmd = a.loaded.Update(msg)
	}
	return a, cmd
}

func (a *App) activeList() *list.Model {
	if a.focus == focusSkipped {
		return &a.skipped
	}
	return &a.loaded
}

func (a *App) selectedMod() (modItem, bool) {
	item, ok := a.activeList().SelectedItem().(modItem)
	return item, ok
}

// disableSelected persists the selected mod in the disabled list. The change
// applies on the next launch; mods are never unloaded mid-session.
func (a *App) disableSelected() {
	item, ok := a.selectedMod()
	if !ok {
		a.statusMsg = "No mod selected"
		return
	}
	id := item.manifest.Key()
	if a.config == nil {
		a.statusMsg = "No project config to update"
		return
	}
	if err := a.config.DisableMod(id); err != nil {
		a.statusMsg = fmt.Sprintf("Disable failed: %v", err)
		a.logbook.Error(item.manifest.Label(), "disable failed: %v", err)
		return
	}
	a.statusMsg = fmt.Sprintf("%s disabled; restart to apply", id)
	a.logbook.Info("%s disabled by user", id)
}

func (a *App) fetchLog() tea.Cmd {
	return func() tea.Msg {
		return a.readLog()
	}
}

func (a *App) scheduleLogRefresh() tea.Cmd {
	return tea.Tick(logRefreshInterval, func(time.Time) tea.Msg {
		return a.readLog()
	})
}

func (a *App) readLog() logRefreshMsg {
	lines, total := a.logbook.Tail(logTailLines)
	return logRefreshMsg{lines: lines, total: total}
}

func (a *App) resizeLists() {
	left, _ := a.columnWidths()
	height := max(6, (a.height-logTailLines-10)/2)
	a.loaded.SetSize(max(20, left-4), height)
	a.skipped.SetSize(max(20, left-4), height)
}

func (a *App) columnWidths() (int, int) {
	width := a.width
	if width <= 0 {
		width = 100
	}
	right := max(32, width/3)
	left := width - right - 4
	if left < 40 {
		return width - 4, 0
	}
	return left, right
}

// View renders the current state to a string.
func (a *App) View() string {
	leftWidth, rightWidth := a.columnWidths()
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF6B6B")).
		MarginBottom(1).
		Render("⬡ MODHOST")

	left := lipgloss.JoinVertical(lipgloss.Left,
		a.renderList(&a.loaded, a.focus == focusLoaded),
		"",
		a.renderList(&a.skipped, a.focus == focusSkipped),
	)
	leftBox := panelStyle.Width(max(20, leftWidth)).Render(left)
	body := leftBox
	if rightWidth > 0 {
		rightBox := panelStyle.Width(max(20, rightWidth)).Render(a.renderDetail(rightWidth - 4))
		body = lipgloss.JoinHorizontal(lipgloss.Top, leftBox, rightBox)
	}

	sections := []string{header, body}
	if warnings := a.renderDeprecations(); warnings != "" {
		sections = append(sections, warnings)
	}
	if logPanel := a.renderLogPanel(); logPanel != "" {
		sections = append(sections, logPanel)
	}
	footer := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		MarginTop(1).
		Render(a.statusMsg + "    Tab → switch list    d → disable    r → refresh    q → quit")
	sections = append(sections, footer)
	return strings.Join(sections, "\n")
}

func (a *App) renderList(l *list.Model, focused bool) string {
	if len(l.Items()) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render(l.Title),
			mutedStyle.Render("  none"),
		)
	}
	view := l.View()
	if !focused {
		return mutedStyle.Render(view)
	}
	return view
}
