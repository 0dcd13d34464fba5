// ABOUTME: Tests for settings loading, merging, validation, and defaults
// ABOUTME: Uses temp directories for isolated file-based tests

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestMerge(t *testing.T) {
	t.Parallel()

	global := &Settings{
		ModulesDir:     "/global/modules",
		InstallTimeout: time.Minute,
		Modules: []ModuleSpec{
			{Name: "a", Source: "builtin"},
			{Name: "b", Source: "./b"},
		},
	}
	project := &Settings{
		InstallTimeout: 2 * time.Minute,
		Modules: []ModuleSpec{
			{Name: "b", Source: "https://example.com/b.tar.gz"},
			{Name: "c", Source: "builtin"},
		},
	}

	result := merge(global, project)

	if result.ModulesDir != "/global/modules" {
		t.Errorf("ModulesDir = %q; want global value", result.ModulesDir)
	}
	if result.InstallTimeout != 2*time.Minute {
		t.Errorf("InstallTimeout = %s; want 2m", result.InstallTimeout)
	}
	if len(result.Modules) != 3 {
		t.Fatalf("Modules = %d; want 3", len(result.Modules))
	}
	if b, _ := result.Lookup("b"); b.Source != "https://example.com/b.tar.gz" {
		t.Errorf("b.Source = %q; want project override", b.Source)
	}
	if len(global.Modules) != 2 || global.Modules[1].Source != "./b" {
		t.Error("merge mutated the base settings")
	}
}

func TestMerge_Nil(t *testing.T) {
	t.Parallel()

	if merge(nil, nil) == nil {
		t.Fatal("merge(nil, nil) should return non-nil")
	}
}

func TestLoadFiles_ProjectOverridesGlobal(t *testing.T) {
	dir := t.TempDir()
	global := filepath.Join(dir, "global", "config.yaml")
	project := filepath.Join(dir, "project", "config.yaml")

	writeFile(t, global, `
modules_dir: /srv/modules
install_timeout: 30s
modules:
  - name: test_dummy
    source: builtin
    description: Test module
`)
	writeFile(t, project, `
deferred_concurrency: 4
modules:
  - name: vr
    source: https://example.com/vr.tar.gz
    on_demand: false
`)

	s, err := LoadFiles(global, project)
	if err != nil {
		t.Fatalf("LoadFiles: %v", err)
	}
	if s.ModulesDir != "/srv/modules" {
		t.Errorf("ModulesDir = %q", s.ModulesDir)
	}
	if s.InstallTimeout != 30*time.Second {
		t.Errorf("InstallTimeout = %s; want 30s", s.InstallTimeout)
	}
	if s.DeferredConcurrency != 4 {
		t.Errorf("DeferredConcurrency = %d; want 4", s.DeferredConcurrency)
	}
	if got := strings.Join(s.Names(), ","); got != "test_dummy,vr" {
		t.Errorf("Names = %s", got)
	}
	vr, _ := s.Lookup("vr")
	if vr.IsOnDemand() {
		t.Error("vr should not be on-demand")
	}
	td, _ := s.Lookup("test_dummy")
	if !td.IsOnDemand() {
		t.Error("test_dummy should default to on-demand")
	}
}

func TestLoadFiles_MissingFilesUseDefaults(t *testing.T) {
	dir := t.TempDir()

	s, err := LoadFiles(filepath.Join(dir, "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFiles: %v", err)
	}
	if s.InstallTimeout != DefaultInstallTimeout {
		t.Errorf("InstallTimeout = %s; want default", s.InstallTimeout)
	}
	if s.DeferredConcurrency != DefaultDeferredConcurrency {
		t.Errorf("DeferredConcurrency = %d; want default", s.DeferredConcurrency)
	}
	if s.ModulesDir == "" {
		t.Error("ModulesDir should default")
	}
	if s.LogLevel != "info" {
		t.Errorf("LogLevel = %q; want info", s.LogLevel)
	}
}

func TestLoadFiles_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "modules: [unterminated")

	if _, err := LoadFiles(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		s    Settings
		want string
	}{
		{"missing name", Settings{Modules: []ModuleSpec{{Source: "builtin"}}}, "missing name"},
		{"missing source", Settings{Modules: []ModuleSpec{{Name: "a"}}}, "missing source"},
		{"duplicate", Settings{Modules: []ModuleSpec{{Name: "a", Source: "builtin"}, {Name: "a", Source: "builtin"}}}, "declared twice"},
		{"negative timeout", Settings{InstallTimeout: -time.Second}, "install_timeout"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.s.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v; want error containing %q", err, tt.want)
			}
		})
	}
}

func TestExpandHome(t *testing.T) {
	t.Parallel()

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := ExpandHome("~/mods"); got != filepath.Join(home, "mods") {
		t.Errorf("ExpandHome(~/mods) = %q", got)
	}
	if got := ExpandHome("/abs"); got != "/abs" {
		t.Errorf("ExpandHome(/abs) = %q", got)
	}
}
