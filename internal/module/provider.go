// ABOUTME: Typed per-module facade: install queries, native loading, cached contents
// ABOUTME: Native loads coalesce via singleflight; contents are built once under a lock

package module

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/mauromedda/featuremod-go/internal/log"
	"github.com/mauromedda/featuremod-go/internal/native"
)

// Loader makes an installed module's entry points available.
type Loader = native.Loader

// Factory builds a module's contents from its resolved entry points.
type Factory[T any] func(syms native.Symbols) (T, error)

// Provider is the facade through which application code reaches one module.
// T is the module's contents type, usually an interface.
type Provider[T any] struct {
	name      Name
	installer *Installer
	loader    Loader
	factory   Factory[T]

	loads singleflight.Group

	mu      sync.Mutex
	loaded  bool
	symbols native.Symbols
	built   bool
	impl    T
}

// NewProvider creates the facade for name. loader may be nil for modules
// without native code.
func NewProvider[T any](name Name, installer *Installer, loader Loader, factory Factory[T]) *Provider[T] {
	if factory == nil {
		panic(fmt.Sprintf("module %s: nil contents factory", name))
	}
	return &Provider[T]{
		name:      name,
		installer: installer,
		loader:    loader,
		factory:   factory,
	}
}

// Name returns the module this provider serves.
func (p *Provider[T]) Name() Name { return p.name }

// IsModuleInstalled reports whether the module is installed.
func (p *Provider[T]) IsModuleInstalled() bool {
	return p.installer.Registry().IsInstalled(p.name)
}

// InstallModule requests installation; l is called exactly once with the
// outcome. Calls made while an install is running share its outcome.
func (p *Provider[T]) InstallModule(l Listener) {
	p.installer.Install(p.name, l)
}

// InstallModuleDeferred queues the module for the installer's next deferred run.
func (p *Provider[T]) InstallModuleDeferred() {
	p.installer.InstallDeferred(p.name)
}

// AwaitInstall installs the module and waits for the outcome.
func (p *Provider[T]) AwaitInstall(ctx context.Context) error {
	return p.installer.Await(ctx, p.name)
}

// IsNativeLoaded reports whether EnsureNativeLoaded has succeeded.
func (p *Provider[T]) IsNativeLoaded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loaded
}

// EnsureNativeLoaded resolves the module's entry points. It is a no-op once
// loaded, and concurrent callers share a single load. A failed load is
// returned and may be retried. Cancelling ctx stops this caller's wait but
// not a load other callers share. A module the loader reports as having no
// entry points loads with an empty table. Calling it before the module is
// installed panics with *PreconditionError.
func (p *Provider[T]) EnsureNativeLoaded(ctx context.Context) error {
	p.requireInstalled("EnsureNativeLoaded")

	if p.IsNativeLoaded() {
		return nil
	}

	// The load runs detached from the first caller's cancellation; each caller
	// stops waiting when its own ctx is done.
	loadCtx := context.WithoutCancel(ctx)
	ch := p.loads.DoChan(string(p.name), func() (any, error) {
		if p.IsNativeLoaded() {
			return nil, nil
		}
		var syms native.Symbols
		if p.loader != nil {
			var err error
			syms, err = p.loader.Load(loadCtx, string(p.name))
			switch {
			case errors.Is(err, native.ErrNoEntryPoints):
				// Nothing to load; contents are built from an empty table.
				syms = native.NewSymbols(string(p.name), nil)
			case err != nil:
				return nil, fmt.Errorf("module %s: loading native code: %w", p.name, err)
			}
		}
		p.mu.Lock()
		p.symbols = syms
		p.loaded = true
		p.mu.Unlock()
		log.Debug("module %s: native code loaded (%d entry points)", p.name, syms.Len())
		return nil, nil
	})

	select {
	case res := <-ch:
		if res.Shared {
			log.Debug("module %s: joined in-flight native load", p.name)
		}
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// GetImpl returns the module's contents, building them on first use. The
// module must be installed and native-loaded; otherwise GetImpl panics with
// *PreconditionError. A failing factory is fatal as well.
func (p *Provider[T]) GetImpl() T {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.built {
		return p.impl
	}
	p.requireInstalled("GetImpl")
	if !p.loaded {
		panic(&PreconditionError{
			Module: p.name,
			Op:     "GetImpl",
			State:  p.installer.Registry().State(p.name),
			Reason: "native code not loaded; call EnsureNativeLoaded first",
		})
	}

	impl, err := p.factory(p.symbols)
	if err != nil {
		panic(fmt.Errorf("module %s: building contents: %w", p.name, err))
	}
	p.impl = impl
	p.built = true
	return impl
}

func (p *Provider[T]) requireInstalled(op string) {
	state := p.installer.Registry().State(p.name)
	if state != Installed {
		panic(&PreconditionError{
			Module: p.name,
			Op:     op,
			State:  state,
			Reason: "module is not installed; check IsModuleInstalled first",
		})
	}
}
