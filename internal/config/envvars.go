// ABOUTME: Environment handling for settings: ${VAR} expansion and FEATUREMOD_* overrides
// ABOUTME: Overrides are applied after file merging so the environment always wins

package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"
)

// Environment variables consulted by ApplyEnv.
const (
	EnvModulesDir          = "FEATUREMOD_MODULES_DIR"
	EnvInstallTimeout      = "FEATUREMOD_INSTALL_TIMEOUT"
	EnvDeferredConcurrency = "FEATUREMOD_DEFERRED_CONCURRENCY"
	EnvLogLevel            = "FEATUREMOD_LOG_LEVEL"
)

var envVarPattern = regexp.MustCompile(`\$\{(\w+)\}`)

// ResolveEnvVars expands ${VAR} patterns in the string fields of s.
func ResolveEnvVars(s *Settings) {
	s.ModulesDir = expandEnv(s.ModulesDir)
	s.LogLevel = expandEnv(s.LogLevel)
	for i := range s.Modules {
		s.Modules[i].Source = expandEnv(s.Modules[i].Source)
	}
}

// ApplyEnv overrides settings from FEATUREMOD_* variables using lookup
// (os.LookupEnv in production).
func ApplyEnv(s *Settings, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvModulesDir); ok && v != "" {
		s.ModulesDir = v
	}
	if v, ok := lookup(EnvInstallTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvInstallTimeout, err)
		}
		s.InstallTimeout = d
	}
	if v, ok := lookup(EnvDeferredConcurrency); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvDeferredConcurrency, err)
		}
		s.DeferredConcurrency = n
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		s.LogLevel = v
	}
	return nil
}

// expandEnv replaces ${VAR} with os.Getenv(VAR). Unset vars become "".
func expandEnv(s string) string {
	if s == "" {
		return s
	}
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}
