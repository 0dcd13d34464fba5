// ABOUTME: Delivery service: the install backend resolving catalog entries to fetchers
// ABOUTME: Stages each fetch, swaps it into place, verifies MODULE.md, records the manifest

package delivery

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mauromedda/featuremod-go/internal/config"
	"github.com/mauromedda/featuremod-go/internal/log"
	"github.com/mauromedda/featuremod-go/internal/module"
	"github.com/mauromedda/featuremod-go/internal/native"
)

// ErrNoSource is returned for a source kind without a registered fetcher.
var ErrNoSource = errors.New("no fetcher for source kind")

// Service installs catalog modules into a modules directory. It implements
// module.Backend.
type Service struct {
	dir      string
	catalog  map[string]config.ModuleSpec
	fetchers map[Kind]Fetcher
	now      func() time.Time

	// mu serializes manifest read-modify-write cycles.
	mu sync.Mutex
}

// Option customizes a Service.
type Option func(*Service)

// WithFetcher registers f for kind, replacing the default.
func WithFetcher(kind Kind, f Fetcher) Option {
	return func(s *Service) { s.fetchers[kind] = f }
}

// NewService creates a service over dir with the given catalog.
func NewService(dir string, catalog []config.ModuleSpec, opts ...Option) (*Service, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving modules dir: %w", err)
	}
	if err := config.EnsureDir(abs); err != nil {
		return nil, fmt.Errorf("creating modules dir: %w", err)
	}

	s := &Service{
		dir:     abs,
		catalog: make(map[string]config.ModuleSpec, len(catalog)),
		fetchers: map[Kind]Fetcher{
			KindLocal: LocalFetcher{},
			KindGit:   GitFetcher{},
			KindHTTP:  NewHTTPFetcher(),
		},
		now: time.Now,
	}
	for _, m := range catalog {
		s.catalog[m.Name] = m
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Dir returns the modules directory.
func (s *Service) Dir() string { return s.dir }

// ModuleDir returns where name is (or would be) installed.
func (s *Service) ModuleDir(name string) string {
	return filepath.Join(s.dir, name)
}

// Spec returns the catalog entry for name.
func (s *Service) Spec(name string) (config.ModuleSpec, bool) {
	m, ok := s.catalog[name]
	return m, ok
}

// Install implements module.Backend.
func (s *Service) Install(ctx context.Context, name module.Name) error {
	spec, ok := s.catalog[string(name)]
	if !ok {
		return fmt.Errorf("%s: %w", name, module.ErrUnknownModule)
	}
	src, err := ParseSource(spec.Source)
	if err != nil {
		return fmt.Errorf("module %s: %w", name, err)
	}

	entry := Entry{
		Name:        string(name),
		Kind:        src.Kind,
		Source:      src.Raw,
		InstalledAt: s.now(),
	}

	if src.Kind == KindBuiltin {
		entry.Version = "builtin"
	} else {
		version, err := s.fetch(ctx, string(name), src)
		if err != nil {
			return err
		}
		entry.Version = version
		entry.Path = s.ModuleDir(string(name))
	}

	if err := s.record(entry); err != nil {
		return err
	}
	log.Debug("delivery: %s installed from %s (%s)", name, src.Kind, entry.Version)
	return nil
}

// fetch stages the module next to its final location, validates it, then
// swaps it into place so a failed attempt never leaves a half-written module.
func (s *Service) fetch(ctx context.Context, name string, src Source) (string, error) {
	fetcher, ok := s.fetchers[src.Kind]
	if !ok {
		return "", fmt.Errorf("module %s: %w %s", name, ErrNoSource, src.Kind)
	}

	stagingRoot, err := os.MkdirTemp(s.dir, ".staging-"+name+"-")
	if err != nil {
		return "", fmt.Errorf("creating staging dir: %w", err)
	}
	defer os.RemoveAll(stagingRoot)
	staged := filepath.Join(stagingRoot, name)

	version, err := fetcher.Fetch(ctx, name, src, staged)
	if err != nil {
		return "", err
	}

	d, err := ReadDescriptor(staged)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return "", fmt.Errorf("module %s: %w", name, err)
	default:
		if err := d.Validate(name); err != nil {
			return "", fmt.Errorf("module %s: %w", name, err)
		}
		if d.Version != "" && src.Kind != KindLocal {
			version = d.Version
		}
	}

	target := s.ModuleDir(name)
	if err := os.RemoveAll(target); err != nil {
		return "", fmt.Errorf("removing previous %s: %w", name, err)
	}
	if err := os.Rename(staged, target); err != nil {
		return "", fmt.Errorf("moving %s into place: %w", name, err)
	}
	return version, nil
}

func (s *Service) record(e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := LoadManifest(s.dir)
	if err != nil {
		return err
	}
	m.Add(e)
	return SaveManifest(s.dir, m)
}

// Remove deletes an installed module from disk and the manifest.
func (s *Service) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := LoadManifest(s.dir)
	if err != nil {
		return err
	}
	e := m.Find(name)
	if e == nil {
		return fmt.Errorf("module %s is not installed", name)
	}
	if e.Path != "" {
		if err := os.RemoveAll(e.Path); err != nil {
			return fmt.Errorf("removing %s: %w", name, err)
		}
	}
	m.Remove(name)
	return SaveManifest(s.dir, m)
}

// Manifest returns the current manifest.
func (s *Service) Manifest() (*Manifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return LoadManifest(s.dir)
}

// Installed returns manifest entries that are still usable: builtin modules
// and modules whose directory exists. Use it to seed a module.Registry.
func (s *Service) Installed() ([]module.Name, error) {
	m, err := s.Manifest()
	if err != nil {
		return nil, err
	}
	var names []module.Name
	for _, e := range m.Modules {
		if e.Path != "" {
			if _, err := os.Stat(e.Path); err != nil {
				log.Warn("delivery: %s listed in manifest but %s is missing", e.Name, e.Path)
				continue
			}
		}
		n, err := module.ParseName(e.Name)
		if err != nil {
			log.Warn("delivery: skipping manifest entry: %v", err)
			continue
		}
		names = append(names, n)
	}
	return names, nil
}

// Describe reads the descriptor of an installed module.
func (s *Service) Describe(name string) (Descriptor, error) {
	return ReadDescriptor(s.ModuleDir(name))
}

// Library resolves a module's shared library for native.DlopenLoader.
// Builtin modules and modules without a library report native.ErrNoEntryPoints.
func (s *Service) Library(name string) (native.Library, error) {
	d, err := s.Describe(name)
	if errors.Is(err, fs.ErrNotExist) {
		return native.Library{}, fmt.Errorf("%s: %w", name, native.ErrNoEntryPoints)
	}
	if err != nil {
		return native.Library{}, err
	}
	if d.Library == "" {
		return native.Library{}, fmt.Errorf("%s: %w", name, native.ErrNoEntryPoints)
	}
	return native.Library{Path: d.LibraryPath(), EntryPoints: d.EntryPoints}, nil
}
