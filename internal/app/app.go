// ABOUTME: Application wiring: settings, registry, installer, delivery backend, loaders, providers
// ABOUTME: Seeds install state from the manifest and queues eager modules for deferred install

package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/mauromedda/featuremod-go/internal/config"
	"github.com/mauromedda/featuremod-go/internal/delivery"
	"github.com/mauromedda/featuremod-go/internal/log"
	"github.com/mauromedda/featuremod-go/internal/module"
	"github.com/mauromedda/featuremod-go/internal/modules/testdummy"
	"github.com/mauromedda/featuremod-go/internal/native"
	"github.com/mauromedda/featuremod-go/internal/suggest"
)

// App owns every long-lived component. Build it with New and release it
// with Close.
type App struct {
	Settings  *config.Settings
	Registry  *module.Registry
	Installer *module.Installer
	Delivery  *delivery.Service
	Table     *native.TableLoader
	Dlopen    *native.DlopenLoader

	// Loader tries in-process entry points first, then shared libraries.
	Loader native.Chain

	TestDummy *module.Provider[testdummy.Contents]

	mu      sync.Mutex
	symbols map[module.Name]*module.Provider[native.Symbols]
}

// New wires an App from settings. opts customize the delivery service.
func New(settings *config.Settings, opts ...delivery.Option) (*App, error) {
	withBuiltins(settings)
	for _, m := range settings.Modules {
		name, err := module.ParseName(m.Name)
		if err != nil {
			return nil, err
		}
		if string(name) != m.Name {
			return nil, fmt.Errorf("module %s: catalog names must be lower-case, use %s", m.Name, name)
		}
	}

	svc, err := delivery.NewService(settings.ModulesDir, settings.Modules, opts...)
	if err != nil {
		return nil, err
	}

	reg := module.NewRegistry()
	installed, err := svc.Installed()
	if err != nil {
		return nil, fmt.Errorf("reading installed modules: %w", err)
	}
	reg.Seed(installed...)

	inst := module.NewInstaller(reg, svc, module.Options{
		Timeout:             settings.InstallTimeout,
		DeferredConcurrency: settings.DeferredConcurrency,
	})

	table := native.NewTableLoader()
	testdummy.Register(table)
	dl := native.NewDlopenLoader(func(name string) (native.Library, error) {
		return svc.Library(name)
	})

	a := &App{
		Settings:  settings,
		Registry:  reg,
		Installer: inst,
		Delivery:  svc,
		Table:     table,
		Dlopen:    dl,
		Loader:    native.Chain{table, dl},
		symbols:   make(map[module.Name]*module.Provider[native.Symbols]),
	}
	a.TestDummy = testdummy.NewProvider(inst, a.Loader)

	for _, m := range settings.Modules {
		if m.IsOnDemand() {
			continue
		}
		inst.InstallDeferred(module.Name(m.Name))
	}

	log.Debug("app: %d modules in catalog, %d installed, %d deferred",
		len(settings.Modules), len(installed), len(inst.Deferred()))
	return a, nil
}

// withBuiltins adds catalog entries for modules compiled into the binary
// unless the configuration already declares them.
func withBuiltins(s *config.Settings) {
	if _, ok := s.Lookup(string(testdummy.Name)); ok {
		return
	}
	s.Modules = append(s.Modules, config.ModuleSpec{
		Name:        string(testdummy.Name),
		Source:      "builtin",
		Description: "Reference module used to exercise install and native loading",
	})
}

// Module validates raw against the catalog. Unknown names report
// module.ErrUnknownModule with a suggestion when one is close.
func (a *App) Module(raw string) (module.Name, error) {
	name, err := module.ParseName(raw)
	if err != nil {
		return "", err
	}
	if _, ok := a.Settings.Lookup(string(name)); !ok {
		err := fmt.Errorf("%s: %w", name, module.ErrUnknownModule)
		if hint := suggest.Hint(string(name), a.Settings.Names()); hint != "" {
			err = fmt.Errorf("%w (%s)", err, hint)
		}
		return "", err
	}
	return name, nil
}

// Symbols returns the generic provider exposing a module's raw entry points.
// Providers are created once per module.
func (a *App) Symbols(name module.Name) *module.Provider[native.Symbols] {
	a.mu.Lock()
	defer a.mu.Unlock()
	p, ok := a.symbols[name]
	if !ok {
		p = module.NewProvider(name, a.Installer, a.Loader, func(s native.Symbols) (native.Symbols, error) {
			return s, nil
		})
		a.symbols[name] = p
	}
	return p
}

// RunDeferred installs every queued module.
func (a *App) RunDeferred(ctx context.Context) error {
	return a.Installer.RunDeferred(ctx)
}

// Remove uninstalls name from disk and marks it NotInstalled. Its library
// handle and symbols provider are dropped so a reinstall loads fresh code.
func (a *App) Remove(name module.Name) error {
	if err := a.Delivery.Remove(string(name)); err != nil {
		return err
	}
	a.Registry.SetNotInstalled(name)

	a.mu.Lock()
	delete(a.symbols, name)
	a.mu.Unlock()
	return a.Dlopen.Forget(string(name))
}

// Close releases native library handles.
func (a *App) Close() error {
	return a.Dlopen.Close()
}
