// modcheck reports whether a mod manifest is blocked by incompatibility
// rules. It exits 0 when the manifest may load, 2 when a rule blocks it and
// 1 on any other error.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kingrea/modhost/internal/compat"
	"github.com/kingrea/modhost/internal/config"
	"github.com/kingrea/modhost/plugins"
)

const exitBlocked = 2

func main() {
	manifestPath := flag.String("manifest", "", "path to the mod manifest (YAML)")
	projectDir := flag.String("project", "", "also apply the rules configured for this project")
	ruleFiles := listFlag{}
	flag.Var(&ruleFiles, "rules", "rule file to apply (repeatable)")
	flag.Parse()

	if strings.TrimSpace(*manifestPath) == "" {
		die("--manifest is required")
	}
	file, err := plugins.LoadManifestFile(*manifestPath)
	if err != nil {
		die("load manifest: %v", err)
	}

	var rules []compat.Rule
	if project := strings.TrimSpace(*projectDir); project != "" {
		absoluteProject, err := filepath.Abs(project)
		if err != nil {
			die("resolve project dir: %v", err)
		}
		cfg, err := config.NewConfig(absoluteProject)
		if err != nil {
			die("load config: %v", err)
		}
		projectRules, err := cfg.Rules()
		if err != nil {
			die("load project rules: %v", err)
		}
		rules = append(rules, projectRules...)
		if minHost := file.Manifest.MinimumHostVersion; !minHost.IsZero() && minHost.IsNewerThan(cfg.HostVersion()) {
			fmt.Printf("%s requires host %s or later (project runs %s)\n", file.Manifest.Label(), minHost, cfg.HostVersion())
			os.Exit(exitBlocked)
		}
	}
	fromFiles, err := compat.LoadRuleFiles(ruleFiles...)
	if err != nil {
		die("load rules: %v", err)
	}
	rules = append(rules, fromFiles...)

	evaluator, err := compat.New(rules)
	if err != nil {
		die("compile rules: %v", err)
	}
	if rule, blocked := evaluator.FindIncompatibility(&file.Manifest); blocked {
		fmt.Println(rule.Message(&file.Manifest))
		os.Exit(exitBlocked)
	}
	fmt.Printf("%s is compatible (%d rule(s) checked)\n", file.Manifest.Label(), len(rules))
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

type listFlag []string

func (l *listFlag) String() string {
	if l == nil {
		return ""
	}
	return strings.Join(*l, ", ")
}

func (l *listFlag) Set(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("rule file path is empty")
	}
	*l = append(*l, value)
	return nil
}
