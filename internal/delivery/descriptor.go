// ABOUTME: Module descriptor (MODULE.md): YAML frontmatter plus Markdown documentation
// ABOUTME: Declares the shared library and exported entry points of an installed module

package delivery

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mauromedda/featuremod-go/internal/config"
)

// DescriptorFileName is the descriptor every module directory may carry.
const DescriptorFileName = "MODULE.md"

// Descriptor is the parsed MODULE.md of an installed module.
type Descriptor struct {
	Name        string   `yaml:"name"`
	Version     string   `yaml:"version"`
	Library     string   `yaml:"library"`
	EntryPoints []string `yaml:"entry_points"`

	// Dir is the module directory the descriptor was read from.
	Dir string `yaml:"-"`
	// Body is the Markdown documentation after the frontmatter.
	Body string `yaml:"-"`
}

// ReadDescriptor parses dir/MODULE.md.
func ReadDescriptor(dir string) (Descriptor, error) {
	data, err := os.ReadFile(filepath.Join(dir, DescriptorFileName))
	if err != nil {
		return Descriptor{}, err
	}
	d, body, err := config.ParseFrontmatter[Descriptor](string(data))
	if err != nil {
		return Descriptor{}, fmt.Errorf("%s: %w", filepath.Join(dir, DescriptorFileName), err)
	}
	d.Dir = dir
	d.Body = body
	return d, nil
}

// LibraryPath returns the absolute path of the declared library, or "" when
// the module ships none.
func (d Descriptor) LibraryPath() string {
	if d.Library == "" {
		return ""
	}
	return filepath.Join(d.Dir, d.Library)
}

// Validate checks the descriptor against the module it was installed as.
func (d Descriptor) Validate(module string) error {
	if d.Name != "" && d.Name != module {
		return fmt.Errorf("descriptor names module %q, installed as %q", d.Name, module)
	}
	if d.Library != "" {
		if !filepath.IsLocal(filepath.FromSlash(d.Library)) {
			return fmt.Errorf("library path %q escapes module directory", d.Library)
		}
		if len(d.EntryPoints) == 0 {
			return fmt.Errorf("library %q declared without entry_points", d.Library)
		}
	}
	if d.Library == "" && len(d.EntryPoints) > 0 {
		return fmt.Errorf("entry_points declared without a library")
	}
	return nil
}
