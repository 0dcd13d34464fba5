//go:build darwin || linux

// ABOUTME: Shared-library loader resolving module entry points with purego (no cgo)
// ABOUTME: Each library is opened once per loader; Close releases every handle

package native

import (
	"context"
	"fmt"
	"sync"

	"github.com/ebitengine/purego"

	"github.com/mauromedda/featuremod-go/internal/log"
)

// Library describes where a module's shared object lives and what it exports.
type Library struct {
	Path        string
	EntryPoints []string
}

// ResolveFunc maps a module name to its library. It returns ErrNoEntryPoints
// for modules that ship no native code.
type ResolveFunc func(module string) (Library, error)

// DlopenLoader opens module libraries with dlopen and resolves their symbols.
type DlopenLoader struct {
	resolve ResolveFunc

	mu      sync.Mutex
	handles map[string]uintptr
	owners  map[string]string // module -> library path
}

// NewDlopenLoader creates a loader using resolve to locate libraries.
func NewDlopenLoader(resolve ResolveFunc) *DlopenLoader {
	return &DlopenLoader{
		resolve: resolve,
		handles: make(map[string]uintptr),
		owners:  make(map[string]string),
	}
}

// Load opens the module's library (once) and resolves every declared entry point.
func (d *DlopenLoader) Load(_ context.Context, module string) (Symbols, error) {
	lib, err := d.resolve(module)
	if err != nil {
		return Symbols{}, err
	}
	if lib.Path == "" || len(lib.EntryPoints) == 0 {
		return Symbols{}, fmt.Errorf("%s: %w", module, ErrNoEntryPoints)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	handle, ok := d.handles[lib.Path]
	if !ok {
		handle, err = purego.Dlopen(lib.Path, purego.RTLD_NOW|purego.RTLD_LOCAL)
		if err != nil {
			return Symbols{}, fmt.Errorf("dlopen %s: %w", lib.Path, err)
		}
		d.handles[lib.Path] = handle
		log.Debug("native: opened %s for %s", lib.Path, module)
	}
	d.owners[module] = lib.Path

	syms := make([]Symbol, 0, len(lib.EntryPoints))
	for _, name := range lib.EntryPoints {
		addr, err := purego.Dlsym(handle, name)
		if err != nil {
			return Symbols{}, fmt.Errorf("dlsym %s in %s: %w", name, lib.Path, err)
		}
		syms = append(syms, Symbol{Name: name, Addr: addr})
	}
	return NewSymbols(module, syms), nil
}

// Forget closes the library opened for module unless another module still
// uses it, so a reinstalled module is opened fresh. Symbols bound from the
// closed library become invalid.
func (d *DlopenLoader) Forget(module string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	path, ok := d.owners[module]
	if !ok {
		return nil
	}
	delete(d.owners, module)
	for _, p := range d.owners {
		if p == path {
			return nil
		}
	}
	h := d.handles[path]
	delete(d.handles, path)
	if err := purego.Dlclose(h); err != nil {
		return fmt.Errorf("dlclose %s: %w", path, err)
	}
	log.Debug("native: closed %s for %s", path, module)
	return nil
}

// Close releases all library handles. Symbols bound from them become invalid.
func (d *DlopenLoader) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var firstErr error
	for path, h := range d.handles {
		if err := purego.Dlclose(h); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("dlclose %s: %w", path, err)
		}
		delete(d.handles, path)
	}
	clear(d.owners)
	return firstErr
}
