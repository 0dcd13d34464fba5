// ABOUTME: Settings loading with global + project YAML deep merge and env overrides
// ABOUTME: Holds the module catalog (name -> source) and installer tuning knobs

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied by Load for unset values.
const (
	DefaultInstallTimeout      = 5 * time.Minute
	DefaultDeferredConcurrency = 2
)

// ModuleSpec is one catalog entry: a module the application may install.
type ModuleSpec struct {
	Name        string `yaml:"name"`
	Source      string `yaml:"source"`
	Description string `yaml:"description,omitempty"`
	// OnDemand false means the module is queued for deferred install at startup.
	OnDemand *bool `yaml:"on_demand,omitempty"`
}

// IsOnDemand reports whether the module installs only when requested.
// Modules are on-demand unless configured otherwise.
func (m ModuleSpec) IsOnDemand() bool {
	return m.OnDemand == nil || *m.OnDemand
}

// Settings holds the merged configuration.
type Settings struct {
	ModulesDir          string        `yaml:"modules_dir,omitempty"`
	InstallTimeout      time.Duration `yaml:"install_timeout,omitempty"`
	DeferredConcurrency int           `yaml:"deferred_concurrency,omitempty"`
	LogLevel            string        `yaml:"log_level,omitempty"`
	Modules             []ModuleSpec  `yaml:"modules,omitempty"`
}

// Load reads global then project settings, merges them (project wins), then
// applies ${VAR} expansion, FEATUREMOD_* overrides, and defaults.
func Load(projectRoot string) (*Settings, error) {
	return LoadFiles(GlobalConfigFile(), ProjectConfigFile(projectRoot))
}

// LoadFiles is Load with explicit file paths. Missing files are skipped.
func LoadFiles(paths ...string) (*Settings, error) {
	merged := &Settings{}
	for _, p := range paths {
		if p == "" {
			continue
		}
		s, err := loadFile(p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		merged = merge(merged, s)
	}

	ResolveEnvVars(merged)
	if err := ApplyEnv(merged, os.LookupEnv); err != nil {
		return nil, fmt.Errorf("applying environment: %w", err)
	}
	merged.applyDefaults()

	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return merged, nil
}

// Parse decodes settings from YAML without merging or defaults.
func Parse(data []byte) (*Settings, error) {
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Lookup returns the catalog entry for name.
func (s *Settings) Lookup(name string) (ModuleSpec, bool) {
	for _, m := range s.Modules {
		if m.Name == name {
			return m, true
		}
	}
	return ModuleSpec{}, false
}

// Names returns catalog module names in declaration order.
func (s *Settings) Names() []string {
	names := make([]string, 0, len(s.Modules))
	for _, m := range s.Modules {
		names = append(names, m.Name)
	}
	return names
}

// Validate checks catalog consistency.
func (s *Settings) Validate() error {
	if s.InstallTimeout < 0 {
		return fmt.Errorf("install_timeout must not be negative, got %s", s.InstallTimeout)
	}
	if s.DeferredConcurrency < 0 {
		return fmt.Errorf("deferred_concurrency must not be negative, got %d", s.DeferredConcurrency)
	}
	seen := make(map[string]bool, len(s.Modules))
	for i, m := range s.Modules {
		if m.Name == "" {
			return fmt.Errorf("modules[%d]: missing name", i)
		}
		if m.Source == "" {
			return fmt.Errorf("module %s: missing source", m.Name)
		}
		if seen[m.Name] {
			return fmt.Errorf("module %s: declared twice", m.Name)
		}
		seen[m.Name] = true
	}
	return nil
}

func (s *Settings) applyDefaults() {
	if s.ModulesDir == "" {
		s.ModulesDir = DefaultModulesDir()
	}
	s.ModulesDir = ExpandHome(s.ModulesDir)
	if s.InstallTimeout == 0 {
		s.InstallTimeout = DefaultInstallTimeout
	}
	if s.DeferredConcurrency == 0 {
		s.DeferredConcurrency = DefaultDeferredConcurrency
	}
	if s.LogLevel == "" {
		s.LogLevel = "info"
	}
}

// loadFile reads Settings from a YAML file.
func loadFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return s, nil
}

// merge deep-merges overlay onto base. Non-zero overlay values win; catalog
// entries are merged by name, overlay entries replacing base entries.
func merge(base, overlay *Settings) *Settings {
	if base == nil {
		base = &Settings{}
	}
	if overlay == nil {
		return base
	}

	result := *base
	result.Modules = append([]ModuleSpec(nil), base.Modules...)

	if overlay.ModulesDir != "" {
		result.ModulesDir = overlay.ModulesDir
	}
	if overlay.InstallTimeout != 0 {
		result.InstallTimeout = overlay.InstallTimeout
	}
	if overlay.DeferredConcurrency != 0 {
		result.DeferredConcurrency = overlay.DeferredConcurrency
	}
	if overlay.LogLevel != "" {
		result.LogLevel = overlay.LogLevel
	}

	for _, m := range overlay.Modules {
		replaced := false
		for i := range result.Modules {
			if result.Modules[i].Name == m.Name {
				result.Modules[i] = m
				replaced = true
				break
			}
		}
		if !replaced {
			result.Modules = append(result.Modules, m)
		}
	}

	return &result
}
