//go:build !darwin && !linux

package native

import "context"

// Library describes where a module's shared object lives and what it exports.
type Library struct {
	Path        string
	EntryPoints []string
}

// ResolveFunc maps a module name to its library.
type ResolveFunc func(module string) (Library, error)

// DlopenLoader is unavailable on this platform; modules with native code
// cannot be loaded.
type DlopenLoader struct {
	resolve ResolveFunc
}

// NewDlopenLoader creates a loader that always reports ErrUnsupported for
// modules shipping a library.
func NewDlopenLoader(resolve ResolveFunc) *DlopenLoader {
	return &DlopenLoader{resolve: resolve}
}

// Load implements Loader.
func (d *DlopenLoader) Load(_ context.Context, module string) (Symbols, error) {
	lib, err := d.resolve(module)
	if err != nil {
		return Symbols{}, err
	}
	if lib.Path == "" || len(lib.EntryPoints) == 0 {
		return Symbols{}, ErrNoEntryPoints
	}
	return Symbols{}, ErrUnsupported
}

// Forget is a no-op.
func (d *DlopenLoader) Forget(string) error { return nil }

// Close is a no-op.
func (d *DlopenLoader) Close() error { return nil }
