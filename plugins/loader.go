package plugins

import (
	"fmt"

	"github.com/kingrea/modhost/internal/compat"
	"github.com/kingrea/modhost/internal/deprecation"
	"github.com/kingrea/modhost/internal/logbook"
	"github.com/kingrea/modhost/internal/mod"
	"github.com/kingrea/modhost/internal/registry"
	"github.com/kingrea/modhost/internal/semver"
)

// Logger receives loader progress. *logging.Logger satisfies it.
type Logger interface {
	Printf(format string, args ...any)
}

// Skip records a manifest that was not loaded, or whose entry failed.
type Skip struct {
	Manifest mod.Manifest
	Path     string
	Reason   string
	// Rule is set when the mod was blocked by an incompatibility rule.
	Rule *compat.Rule
}

// Report summarizes one Load call.
type Report struct {
	Loaded  []*mod.Instance
	Skipped []Skip
	// Failed lists loaded mods whose entry returned an error or panicked.
	Failed []Skip
}

// LoaderOption customizes a Loader.
type LoaderOption func(*Loader)

// WithLogger routes loader progress to logger.
func WithLogger(logger Logger) LoaderOption {
	return func(l *Loader) { l.logger = logger }
}

// WithJournal records loads and skips in journal.
func WithJournal(journal *logbook.Logbook) LoaderOption {
	return func(l *Loader) { l.journal = journal }
}

// WithDeprecations hands mods a helper whose deprecated methods report to m.
func WithDeprecations(m *deprecation.Manager) LoaderOption {
	return func(l *Loader) { l.deprecations = m }
}

// WithHostVersion sets the version compared against minimum_host_version.
func WithHostVersion(v semver.Version) LoaderOption {
	return func(l *Loader) { l.hostVersion = v }
}

// WithDisabled skips every mod for which disabled returns true.
func WithDisabled(disabled func(id string) bool) LoaderOption {
	return func(l *Loader) { l.disabled = disabled }
}

// Loader gates discovered manifests, builds their extensions, registers the
// resulting instances and then runs their entries.
type Loader struct {
	registry     *registry.Registry
	evaluator    *compat.Evaluator
	factories    *mod.Factories
	logger       Logger
	journal      *logbook.Logbook
	deprecations *deprecation.Manager
	hostVersion  semver.Version
	disabled     func(id string) bool
}

// NewLoader wires a loader around the registry, rule set and factories.
func NewLoader(reg *registry.Registry, evaluator *compat.Evaluator, factories *mod.Factories, opts ...LoaderOption) *Loader {
	l := &Loader{
		registry:  reg,
		evaluator: evaluator,
		factories: factories,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Load registers every loadable manifest in order, then runs the entries of
// the mods it registered. One mod failing never stops the others.
func (l *Loader) Load(files []ManifestFile) Report {
	var report Report
	seen := make(map[string]string, len(files))
	for _, file := range files {
		inst, skip := l.loadOne(file, seen)
		if skip != nil {
			report.Skipped = append(report.Skipped, *skip)
			l.printf("skipped %s: %s", file.Manifest.Label(), skip.Reason)
			l.journal.Warn(file.Manifest.Label(), "skipped: %s", skip.Reason)
			continue
		}
		report.Loaded = append(report.Loaded, inst)
		l.printf("loaded %s from %s", inst.Manifest.Label(), file.Path)
		l.journal.Info("loaded %s", inst.Manifest.Label())
	}
	for _, inst := range report.Loaded {
		if err := l.enter(inst); err != nil {
			report.Failed = append(report.Failed, Skip{Manifest: *inst.Manifest, Path: inst.Source, Reason: err.Error()})
			l.printf("%s failed on entry: %v", inst.Manifest.Label(), err)
			l.journal.Error(inst.Manifest.Label(), "entry failed: %v", err)
		}
	}
	return report
}

func (l *Loader) loadOne(file ManifestFile, seen map[string]string) (*mod.Instance, *Skip) {
	manifest := file.Manifest.Normalized()
	skip := func(reason string) *Skip {
		return &Skip{Manifest: manifest, Path: file.Path, Reason: reason}
	}
	if err := manifest.Validate(); err != nil {
		return nil, skip(err.Error())
	}
	key := manifest.Key()
	if l.disabled != nil && l.disabled(key) {
		return nil, skip("disabled by user")
	}
	if other, dup := seen[key]; dup {
		return nil, skip(fmt.Sprintf("duplicate mod ID %s (also in %s)", key, other))
	}
	seen[key] = file.Path
	if manifest.ID != "" && l.registry.IsLoaded(manifest.ID) {
		return nil, skip(fmt.Sprintf("mod ID %s is already loaded", key))
	}
	if !l.hostVersion.IsZero() && !manifest.MinimumHostVersion.IsZero() && manifest.MinimumHostVersion.IsNewerThan(l.hostVersion) {
		return nil, skip(fmt.Sprintf("requires host %s or later (running %s)", manifest.MinimumHostVersion, l.hostVersion))
	}
	if rule, blocked := l.evaluator.FindIncompatibility(&manifest); blocked {
		s := skip(rule.Message(&manifest))
		s.Rule = &rule
		return nil, s
	}

	inst := &mod.Instance{Manifest: &manifest, Source: file.Path}
	if manifest.EntryPoint != "" {
		ext, err := l.factories.Build(&manifest)
		if err != nil {
			return nil, skip(err.Error())
		}
		inst = mod.NewInstance(&manifest, ext)
		inst.Source = file.Path
	}
	if err := l.registry.Register(inst); err != nil {
		return nil, skip(err.Error())
	}
	return inst, nil
}

func (l *Loader) enter(inst *mod.Instance) (err error) {
	if inst.Extension == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return inst.Extension.Entry(&helper{
		manifest:     inst.Manifest,
		lookup:       l.registry,
		logger:       l.logger,
		deprecations: l.deprecations,
	})
}

func (l *Loader) printf(format string, args ...any) {
	if l.logger == nil {
		return
	}
	l.logger.Printf(format, args...)
}
