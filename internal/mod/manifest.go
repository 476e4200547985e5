package mod

import (
	"fmt"
	"strings"

	"github.com/kingrea/modhost/internal/semver"
)

// Manifest describes a mod's identity as declared by its author.
//
// A manifest is immutable once the loader hands it to the registry; callers
// share the pointer and must not modify it.
type Manifest struct {
	ID                 string         `json:"id" yaml:"id"`
	Name               string         `json:"name" yaml:"name"`
	Author             string         `json:"author,omitempty" yaml:"author,omitempty"`
	Description        string         `json:"description,omitempty" yaml:"description,omitempty"`
	Version            semver.Version `json:"version" yaml:"version"`
	EntryPoint         string         `json:"entry_point,omitempty" yaml:"entry_point,omitempty"`
	MinimumHostVersion semver.Version `json:"minimum_host_version,omitempty" yaml:"minimum_host_version,omitempty"`
	Dependencies       []string       `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

// Key returns the identifier used to match the manifest against external
// records: the unique ID, or the entry point when the ID is blank.
func (m Manifest) Key() string {
	if id := strings.TrimSpace(m.ID); id != "" {
		return id
	}
	return strings.TrimSpace(m.EntryPoint)
}

// Label returns a human-friendly "Name version" string for messages.
func (m Manifest) Label() string {
	name := strings.TrimSpace(m.Name)
	if name == "" {
		name = m.Key()
	}
	if m.Version.IsZero() {
		return name
	}
	return fmt.Sprintf("%s %s", name, m.Version)
}

// Normalized returns a trimmed copy of the manifest.
func (m Manifest) Normalized() Manifest {
	clone := Manifest{
		ID:                 strings.TrimSpace(m.ID),
		Name:               strings.TrimSpace(m.Name),
		Author:             strings.TrimSpace(m.Author),
		Description:        strings.TrimSpace(m.Description),
		Version:            m.Version,
		EntryPoint:         strings.TrimSpace(m.EntryPoint),
		MinimumHostVersion: m.MinimumHostVersion,
	}
	if len(m.Dependencies) > 0 {
		clone.Dependencies = make([]string, 0, len(m.Dependencies))
		for _, dep := range m.Dependencies {
			if trimmed := strings.TrimSpace(dep); trimmed != "" {
				clone.Dependencies = append(clone.Dependencies, trimmed)
			}
		}
	}
	return clone
}

// Validate ensures the manifest carries enough identity to be loaded.
func (m Manifest) Validate() error {
	normalized := m.Normalized()
	key := normalized.Key()
	if key == "" {
		return fmt.Errorf("mod: id or entry_point is required")
	}
	if normalized.Name == "" {
		return fmt.Errorf("mod %s: name is required", key)
	}
	if normalized.Version.IsZero() {
		return fmt.Errorf("mod %s: version is required", key)
	}
	seen := make(map[string]struct{}, len(normalized.Dependencies))
	for idx, dep := range normalized.Dependencies {
		if dep == key {
			return fmt.Errorf("mod %s: dependencies[%d]: mod cannot depend on itself", key, idx)
		}
		if _, exists := seen[dep]; exists {
			return fmt.Errorf("mod %s: dependencies[%d]: duplicate dependency %s", key, idx, dep)
		}
		seen[dep] = struct{}{}
	}
	return nil
}
