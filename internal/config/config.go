// internal/config/config.go
//
// This package handles configuration and the .modhost directory structure.
// Every project hosting mods gets a .modhost/ folder created in its root.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/kingrea/modhost/internal/compat"
	"github.com/kingrea/modhost/internal/semver"
)

const (
	// HostDir is the name of the directory we create in each project
	HostDir = ".modhost"

	// DefaultHostVersion is reported to mods when the config does not pin one.
	DefaultHostVersion = "1.0.0"

	defaultModsDir = "mods"
)

const defaultProjectConfigYAML = `# modhost project configuration
version: 1

# Version of the host API offered to mods. Mods declaring a higher
# minimum_host_version are skipped.
host_version: 1.0.0

mods:
  # Directory scanned for *.yaml manifests and *.go manifest scripts,
  # relative to the project directory.
  dir: mods
  # Mod IDs that should not be loaded.
  disabled: []

# Extra rule files, relative to the project directory.
rule_files: []

# Known-incompatible mod versions. A version matching override is exempt.
incompatible_mods:
  # - id: Pathoschild.ChestsAnywhere
  #   lower_version: 1.0
  #   upper_version: 1.9
  #   override: "-unofficial"
  #   reason: uses the removed inventory API
`

// ModsConfig controls mod discovery.
type ModsConfig struct {
	Dir      string   `yaml:"dir"`
	Disabled []string `yaml:"disabled,omitempty"`
}

// ProjectConfig models .modhost/config.yaml.
type ProjectConfig struct {
	Version          int           `yaml:"version"`
	HostVersion      string        `yaml:"host_version"`
	Mods             ModsConfig    `yaml:"mods"`
	RuleFiles        []string      `yaml:"rule_files,omitempty"`
	IncompatibleMods []compat.Rule `yaml:"incompatible_mods,omitempty"`
}

// hostEnv holds environment overrides. Unset variables leave the file values.
type hostEnv struct {
	ModsDir     string   `env:"MODHOST_MODS_DIR"`
	RuleFiles   []string `env:"MODHOST_RULE_FILES" envSeparator:","`
	HostVersion string   `env:"MODHOST_HOST_VERSION"`
}

// Config holds the runtime configuration for the mod host.
type Config struct {
	// ProjectDir is the directory the host was started from
	ProjectDir string

	// HostProjectDir is ProjectDir/.modhost
	HostProjectDir string

	Project ProjectConfig
}

// InitHostDir creates the .modhost directory structure in the given project directory.
//
// Structure created:
// .modhost/
// ├── config.yaml
// ├── logs/         <- modhost.log and journal.log
// └── rules/        <- optional rule files
func InitHostDir(projectDir string) error {
	hostDir := filepath.Join(projectDir, HostDir)

	dirs := []string{
		filepath.Join(hostDir, "logs"),
		filepath.Join(hostDir, "rules"),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	return ensureProjectConfig(filepath.Join(hostDir, "config.yaml"))
}

// NewConfig loads .modhost/config.yaml (if present) and applies environment
// overrides.
func NewConfig(projectDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir:     projectDir,
		HostProjectDir: filepath.Join(projectDir, HostDir),
		Project:        defaultProjectConfig(),
	}
	cfg.Project.normalize(projectDir)

	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.HostProjectDir, "logs")
}

// JournalPath returns the logbook file shown by the TUI
func (c *Config) JournalPath() string {
	return filepath.Join(c.LogsDir(), "journal.log")
}

// ModsDir returns the absolute directory scanned for manifests
func (c *Config) ModsDir() string {
	return c.Project.Mods.Dir
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.HostProjectDir, "config.yaml")
}

// HostVersion returns the parsed host API version.
func (c *Config) HostVersion() semver.Version {
	v, err := semver.Parse(c.Project.HostVersion)
	if err != nil {
		return semver.MustParse(DefaultHostVersion)
	}
	return v
}

// IsDisabled reports whether the mod ID was disabled by the user.
func (c *Config) IsDisabled(id string) bool {
	return contains(c.Project.Mods.Disabled, id)
}

// Rules returns the inline incompatibility rules followed by the rules of
// every configured rule file.
func (c *Config) Rules() ([]compat.Rule, error) {
	rules := append([]compat.Rule{}, c.Project.IncompatibleMods...)
	fromFiles, err := compat.LoadRuleFiles(c.Project.RuleFiles...)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return append(rules, fromFiles...), nil
}

// DisableMod adds id to the disabled list and persists the value back to
// .modhost/config.yaml so the mod stays disabled on the next launch.
func (c *Config) DisableMod(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("config: mod id is required")
	}
	if c.IsDisabled(id) {
		return nil
	}
	c.Project.Mods.Disabled = append(c.Project.Mods.Disabled, id)
	return c.saveProjectConfig()
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed ProjectConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize(c.ProjectDir)
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Project = parsed
	return nil
}

func (c *Config) applyEnv() error {
	var overrides hostEnv
	if err := env.Parse(&overrides); err != nil {
		return fmt.Errorf("config: parse env: %w", err)
	}
	if dir := strings.TrimSpace(overrides.ModsDir); dir != "" {
		c.Project.Mods.Dir = resolvePath(c.ProjectDir, dir)
	}
	if len(overrides.RuleFiles) > 0 {
		c.Project.RuleFiles = resolvePaths(c.ProjectDir, overrides.RuleFiles)
	}
	if version := strings.TrimSpace(overrides.HostVersion); version != "" {
		c.Project.HostVersion = version
	}
	if err := c.Project.validate(); err != nil {
		return fmt.Errorf("config: env: %w", err)
	}
	return nil
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version:     1,
		HostVersion: DefaultHostVersion,
		Mods:        ModsConfig{Dir: defaultModsDir},
	}
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if strings.TrimSpace(pc.HostVersion) == "" {
		pc.HostVersion = DefaultHostVersion
	}
	if strings.TrimSpace(pc.Mods.Dir) == "" {
		pc.Mods.Dir = defaultModsDir
	}
}

func (pc *ProjectConfig) normalize(base string) {
	pc.HostVersion = strings.TrimSpace(pc.HostVersion)
	pc.Mods.Dir = resolvePath(base, pc.Mods.Dir)
	pc.RuleFiles = resolvePaths(base, pc.RuleFiles)
	disabled := pc.Mods.Disabled[:0]
	for _, id := range pc.Mods.Disabled {
		if trimmed := strings.TrimSpace(id); trimmed != "" && !contains(disabled, trimmed) {
			disabled = append(disabled, trimmed)
		}
	}
	pc.Mods.Disabled = disabled
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if _, err := semver.Parse(pc.HostVersion); err != nil {
		return fmt.Errorf("host_version: %w", err)
	}
	if pc.Mods.Dir == "" {
		return fmt.Errorf("mods.dir is required")
	}
	if _, err := compat.New(pc.IncompatibleMods); err != nil {
		return fmt.Errorf("incompatible_mods: %w", err)
	}
	return nil
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == target {
			return true
		}
	}
	return false
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}

func resolvePaths(base string, candidates []string) []string {
	if len(candidates) == 0 {
		return nil
	}
	out := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		if resolved := resolvePath(base, candidate); resolved != "" {
			out = append(out, resolved)
		}
	}
	return out
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0644)
}

func (c *Config) saveProjectConfig() error {
	if c == nil {
		return fmt.Errorf("config: nil receiver")
	}
	if err := c.Project.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(c.HostProjectDir, 0o755); err != nil {
		return fmt.Errorf("config: ensure %s: %w", c.HostProjectDir, err)
	}
	persisted := c.Project
	persisted.Mods.Dir = relativeTo(c.ProjectDir, persisted.Mods.Dir)
	persisted.RuleFiles = make([]string, len(c.Project.RuleFiles))
	for i, path := range c.Project.RuleFiles {
		persisted.RuleFiles[i] = relativeTo(c.ProjectDir, path)
	}
	data, err := yaml.Marshal(persisted)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	path := c.ProjectConfigPath()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

func relativeTo(base, path string) string {
	if rel, err := filepath.Rel(base, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}
