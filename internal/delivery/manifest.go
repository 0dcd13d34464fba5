// ABOUTME: Manifest tracks installed modules in a JSON file under the modules dir
// ABOUTME: Provides CRUD operations for entries with atomic file writes

//go:generate easyjson -all manifest.go

package delivery

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/mailru/easyjson"
)

const manifestFileName = "manifest.json"

// Entry records one installed module in the manifest.
type Entry struct {
	Name        string    `json:"name"`
	Kind        Kind      `json:"kind"`
	Source      string    `json:"source"`
	Path        string    `json:"path"`
	Version     string    `json:"version"`
	InstalledAt time.Time `json:"installed_at"`
}

// Manifest tracks all installed modules.
type Manifest struct {
	Modules []Entry `json:"modules"`
}

// LoadManifest reads a manifest from the given directory.
// Returns an empty manifest if the file does not exist.
func LoadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, manifestFileName)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Manifest{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m Manifest
	if err := easyjson.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}

// SaveManifest writes a manifest to the given directory atomically.
func SaveManifest(dir string, m *Manifest) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating manifest directory: %w", err)
	}

	data, err := easyjson.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}

	path := filepath.Join(dir, manifestFileName)
	tmpPath := path + ".tmp"

	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("writing temp manifest: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp manifest: %w", err)
	}

	return nil
}

// Add adds or replaces the entry for e.Name, keeping entries sorted by name.
func (m *Manifest) Add(e Entry) {
	for i, p := range m.Modules {
		if p.Name == e.Name {
			m.Modules[i] = e
			return
		}
	}
	m.Modules = append(m.Modules, e)
	slices.SortFunc(m.Modules, func(a, b Entry) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})
}

// Remove removes a module by name. Returns true if found.
func (m *Manifest) Remove(name string) bool {
	for i, p := range m.Modules {
		if p.Name == name {
			m.Modules = slices.Delete(m.Modules, i, i+1)
			return true
		}
	}
	return false
}

// Find returns the entry for name, or nil if not found.
func (m *Manifest) Find(name string) *Entry {
	for i, p := range m.Modules {
		if p.Name == name {
			return &m.Modules[i]
		}
	}
	return nil
}
