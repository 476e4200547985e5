// Package compat decides whether a mod version is known to be incompatible
// with the host.
//
// Rules are supplied once, when the Evaluator is built, and never change
// afterwards. FindIncompatibility is a pure ordered scan: the first rule whose
// key and version range match the manifest, and whose override pattern (if
// any) does not match the manifest's version text, wins.
package compat

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kingrea/modhost/internal/mod"
	"github.com/kingrea/modhost/internal/semver"
)

// Rule blocks a version range of one mod.
type Rule struct {
	// ID is the mod's unique ID, or its entry point for mods without one.
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	// LowerVersion is the inclusive lower bound. Empty means no minimum.
	LowerVersion string `json:"lower_version,omitempty" yaml:"lower_version,omitempty"`
	// UpperVersion is the inclusive upper bound.
	UpperVersion string `json:"upper_version" yaml:"upper_version"`
	// Override is a regular expression; a version string matching it
	// (case-insensitively) is exempt from the rule.
	Override  string `json:"override,omitempty" yaml:"override,omitempty"`
	Reason    string `json:"reason,omitempty" yaml:"reason,omitempty"`
	UpdateURL string `json:"update_url,omitempty" yaml:"update_url,omitempty"`
}

// Message formats the reason a manifest is blocked by this rule.
func (r Rule) Message(m *mod.Manifest) string {
	var b strings.Builder
	label := r.Name
	if m != nil {
		label = m.Label()
	}
	if label == "" {
		label = r.ID
	}
	fmt.Fprintf(&b, "%s is incompatible with this host", label)
	if reason := strings.TrimSpace(r.Reason); reason != "" {
		fmt.Fprintf(&b, ": %s", reason)
	}
	if url := strings.TrimSpace(r.UpdateURL); url != "" {
		fmt.Fprintf(&b, " (update: %s)", url)
	}
	return b.String()
}

type compiledRule struct {
	rule     Rule
	key      string
	lower    semver.Version
	upper    semver.Version
	override *regexp.Regexp
}

// Evaluator matches manifests against an immutable rule set.
type Evaluator struct {
	rules []compiledRule
}

// New validates and compiles rules in order.
func New(rules []Rule) (*Evaluator, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for idx, rule := range rules {
		cr, err := compile(rule)
		if err != nil {
			return nil, fmt.Errorf("compat: rules[%d]: %w", idx, err)
		}
		compiled = append(compiled, cr)
	}
	return &Evaluator{rules: compiled}, nil
}

func compile(rule Rule) (compiledRule, error) {
	cr := compiledRule{rule: rule, key: strings.TrimSpace(rule.ID)}
	if cr.key == "" {
		return compiledRule{}, fmt.Errorf("id is required")
	}
	if strings.TrimSpace(rule.UpperVersion) == "" {
		return compiledRule{}, fmt.Errorf("%s: upper_version is required", cr.key)
	}
	upper, err := semver.Parse(rule.UpperVersion)
	if err != nil {
		return compiledRule{}, fmt.Errorf("%s: upper_version: %w", cr.key, err)
	}
	cr.upper = upper
	if strings.TrimSpace(rule.LowerVersion) != "" {
		lower, err := semver.Parse(rule.LowerVersion)
		if err != nil {
			return compiledRule{}, fmt.Errorf("%s: lower_version: %w", cr.key, err)
		}
		if lower.IsNewerThan(upper) {
			return compiledRule{}, fmt.Errorf("%s: lower_version %s is newer than upper_version %s", cr.key, lower, upper)
		}
		cr.lower = lower
	}
	if pattern := strings.TrimSpace(rule.Override); pattern != "" {
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			return compiledRule{}, fmt.Errorf("%s: override: %w", cr.key, err)
		}
		cr.override = re
	}
	return cr, nil
}

// FindIncompatibility returns the first rule blocking m.
func (e *Evaluator) FindIncompatibility(m *mod.Manifest) (Rule, bool) {
	if e == nil || m == nil || m.Version.IsZero() {
		return Rule{}, false
	}
	key := m.Key()
	if key == "" {
		return Rule{}, false
	}
	for _, cr := range e.rules {
		if cr.matches(key, m.Version) {
			return cr.rule, true
		}
	}
	return Rule{}, false
}

func (cr compiledRule) matches(key string, version semver.Version) bool {
	if cr.key != key {
		return false
	}
	if !cr.lower.IsZero() && version.IsOlderThan(cr.lower) {
		return false
	}
	if version.IsNewerThan(cr.upper) {
		return false
	}
	if cr.override != nil && cr.override.MatchString(version.String()) {
		return false
	}
	return true
}

// Rules returns a copy of the rule set in evaluation order.
func (e *Evaluator) Rules() []Rule {
	if e == nil {
		return nil
	}
	out := make([]Rule, len(e.rules))
	for i, cr := range e.rules {
		out[i] = cr.rule
	}
	return out
}
