// ABOUTME: Standard filesystem paths for featuremod configuration and module data
// ABOUTME: Resolves ~/.featuremod/ for global and .featuremod/ for project-local paths

package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	globalDirName  = ".featuremod"
	projectDirName = ".featuremod"
	configFileName = "config.yaml"
)

// GlobalDir returns the user-global config directory (~/.featuremod/).
func GlobalDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", globalDirName)
	}
	return filepath.Join(home, globalDirName)
}

// ProjectDir returns the project-local config directory (.featuremod/ in root).
func ProjectDir(projectRoot string) string {
	return filepath.Join(projectRoot, projectDirName)
}

// GlobalConfigFile returns the path to the global config file.
func GlobalConfigFile() string {
	return filepath.Join(GlobalDir(), configFileName)
}

// ProjectConfigFile returns the path to the project-local config file.
func ProjectConfigFile(projectRoot string) string {
	return filepath.Join(ProjectDir(projectRoot), configFileName)
}

// DefaultModulesDir returns where installed modules live unless configured.
func DefaultModulesDir() string {
	return filepath.Join(GlobalDir(), "modules")
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// EnsureDir creates a directory and all parents if they don't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}
