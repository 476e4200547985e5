// Package deprecation reports mods that use deprecated host APIs.
//
// Callers usually do not know which mod is calling them, so an empty source
// is attributed by walking the call stack until a frame belonging to a loaded
// mod is found. Each (mod, API) pair is reported once per process.
package deprecation

import (
	"fmt"
	"strings"
	"sync"

	"github.com/kingrea/modhost/internal/logbook"
)

// UnknownSource labels warnings that could not be attributed to a mod.
const UnknownSource = "an unknown mod"

// Level describes how urgently a deprecated API should be replaced.
type Level int

const (
	// Notice is recorded but not surfaced to the user.
	Notice Level = iota
	// Info is surfaced as an informational journal entry.
	Info
	// PendingRemoval is surfaced as a warning: the API will be removed.
	PendingRemoval
)

func (l Level) String() string {
	switch l {
	case Notice:
		return "notice"
	case Info:
		return "info"
	case PendingRemoval:
		return "pending-removal"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// Resolver attributes the current call stack to a mod display name.
type Resolver interface {
	ResolveFromCallStack() (string, bool)
}

// Logger receives the full warning text.
type Logger interface {
	Printf(format string, args ...any)
}

// Warning is one recorded deprecation.
type Warning struct {
	Source  string
	Noun    string
	Version string
	Level   Level
}

// Message renders the warning for users.
func (w Warning) Message() string {
	switch w.Level {
	case PendingRemoval:
		return fmt.Sprintf("%s uses deprecated code (%s) and will break when it's removed in a future release. It was deprecated in %s.", w.Source, w.Noun, w.Version)
	default:
		return fmt.Sprintf("%s uses deprecated code (%s), deprecated since %s.", w.Source, w.Noun, w.Version)
	}
}

// Manager de-duplicates and records deprecation warnings.
type Manager struct {
	resolver Resolver
	logger   Logger
	journal  *logbook.Logbook

	mu       sync.Mutex
	seen     map[string]struct{}
	warnings []Warning
}

// NewManager returns a Manager attributing unnamed sources through resolver.
// logger and journal may be nil.
func NewManager(resolver Resolver, logger Logger, journal *logbook.Logbook) *Manager {
	return &Manager{
		resolver: resolver,
		logger:   logger,
		journal:  journal,
		seen:     map[string]struct{}{},
	}
}

// Warn records that source used the deprecated API noun. An empty source is
// resolved from the call stack. Returns false when the pair was already
// reported.
func (m *Manager) Warn(source, noun, version string, level Level) bool {
	source = strings.TrimSpace(source)
	if source == "" && m.resolver != nil {
		if name, ok := m.resolver.ResolveFromCallStack(); ok {
			source = name
		}
	}
	if source == "" {
		source = UnknownSource
	}
	w := Warning{Source: source, Noun: noun, Version: version, Level: level}

	m.mu.Lock()
	key := source + "\x00" + noun
	if _, dup := m.seen[key]; dup {
		m.mu.Unlock()
		return false
	}
	m.seen[key] = struct{}{}
	m.warnings = append(m.warnings, w)
	m.mu.Unlock()

	if m.logger != nil {
		m.logger.Printf("deprecation [%s]: %s", level, w.Message())
	}
	switch level {
	case Info:
		m.journal.Append(logbook.LevelInfo, source, w.Message())
	case PendingRemoval:
		m.journal.Append(logbook.LevelWarn, source, w.Message())
	}
	return true
}

// Warnings returns the recorded warnings in the order they were first raised.
func (m *Manager) Warnings() []Warning {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Warning(nil), m.warnings...)
}
