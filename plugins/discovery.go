package plugins

import (
	"fmt"

	"github.com/kingrea/modhost/internal/compat"
	"github.com/kingrea/modhost/internal/config"
	"github.com/kingrea/modhost/internal/mod"
	"github.com/kingrea/modhost/internal/registry"
)

// LoadProject discovers the manifests under the project's mods directory and
// loads them into reg, gated by the project's rules, host version and
// disabled list. opts are applied after the config-derived options.
func LoadProject(cfg *config.Config, reg *registry.Registry, factories *mod.Factories, opts ...LoaderOption) (Report, error) {
	if cfg == nil || reg == nil {
		return Report{}, fmt.Errorf("plugin: config and registry are required")
	}
	rules, err := cfg.Rules()
	if err != nil {
		return Report{}, err
	}
	evaluator, err := compat.New(rules)
	if err != nil {
		return Report{}, fmt.Errorf("plugin: %w", err)
	}
	files, err := DiscoverManifests(cfg.ModsDir())
	if err != nil {
		return Report{}, err
	}
	loaderOpts := append([]LoaderOption{
		WithHostVersion(cfg.HostVersion()),
		WithDisabled(cfg.IsDisabled),
	}, opts...)
	return NewLoader(reg, evaluator, factories, loaderOpts...).Load(files), nil
}
