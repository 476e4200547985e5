package compat

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type ruleDocument struct {
	IncompatibleMods []Rule `yaml:"incompatible_mods"`
}

// ParseRulesYAML decodes a rule list. The payload is either a top-level
// sequence of rules or a mapping with an incompatible_mods key.
func ParseRulesYAML(data []byte) ([]Rule, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("compat: decode rules: %w", err)
	}
	if len(node.Content) == 0 {
		return nil, nil
	}
	root := node.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		var rules []Rule
		if err := root.Decode(&rules); err != nil {
			return nil, fmt.Errorf("compat: decode rules: %w", err)
		}
		return rules, nil
	case yaml.MappingNode:
		var doc ruleDocument
		if err := root.Decode(&doc); err != nil {
			return nil, fmt.Errorf("compat: decode rules: %w", err)
		}
		return doc.IncompatibleMods, nil
	default:
		return nil, fmt.Errorf("compat: rules must be a list or a mapping with incompatible_mods")
	}
}

// LoadRuleFile reads and decodes a rule file.
func LoadRuleFile(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("compat: read %s: %w", path, err)
	}
	rules, err := ParseRulesYAML(data)
	if err != nil {
		return nil, fmt.Errorf("compat: %s: %w", filepath.Clean(path), err)
	}
	return rules, nil
}

// LoadRuleFiles concatenates the rules of every path, in argument order.
// Blank paths are skipped.
func LoadRuleFiles(paths ...string) ([]Rule, error) {
	var all []Rule
	for _, path := range paths {
		if strings.TrimSpace(path) == "" {
			continue
		}
		rules, err := LoadRuleFile(path)
		if err != nil {
			return nil, err
		}
		all = append(all, rules...)
	}
	return all, nil
}
