// ABOUTME: Asynchronous module installer with coalescing of duplicate requests
// ABOUTME: Listeners fire once per request on a per-module serial dispatcher

package module

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mauromedda/featuremod-go/internal/log"
)

// Default limits applied when Options leaves them zero.
const (
	DefaultInstallTimeout      = 5 * time.Minute
	DefaultDeferredConcurrency = 2
)

// Backend performs the platform side of an install: download, unpack,
// verify. It blocks until the module is usable or the attempt failed.
type Backend interface {
	Install(ctx context.Context, name Name) error
}

// BackendFunc adapts a function to Backend.
type BackendFunc func(ctx context.Context, name Name) error

// Install implements Backend.
func (f BackendFunc) Install(ctx context.Context, name Name) error { return f(ctx, name) }

// Listener receives the outcome of one install request, exactly once.
type Listener func(success bool)

// Options tune an Installer.
type Options struct {
	// Timeout bounds a single install attempt.
	Timeout time.Duration
	// DeferredConcurrency bounds parallel attempts in RunDeferred.
	DeferredConcurrency int
}

// attempt is one in-flight backend call and everyone waiting on it.
type attempt struct {
	listeners []Listener
	done      chan struct{}
	err       error
}

// Installer runs installs in the background and reports to listeners.
// Requests for a module that is already being installed join that attempt.
type Installer struct {
	registry    *Registry
	backend     Backend
	timeout     time.Duration
	concurrency int

	mu          sync.Mutex
	inflight    map[Name]*attempt
	deferred    []Name
	dispatchers map[Name]*dispatcher
}

// NewInstaller creates an installer recording state in reg.
func NewInstaller(reg *Registry, backend Backend, opts Options) *Installer {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultInstallTimeout
	}
	if opts.DeferredConcurrency <= 0 {
		opts.DeferredConcurrency = DefaultDeferredConcurrency
	}
	return &Installer{
		registry:    reg,
		backend:     backend,
		timeout:     opts.Timeout,
		concurrency: opts.DeferredConcurrency,
		inflight:    make(map[Name]*attempt),
		dispatchers: make(map[Name]*dispatcher),
	}
}

// Registry returns the registry the installer writes to.
func (in *Installer) Registry() *Registry { return in.registry }

// Install requests installation of name and returns immediately. l may be
// nil. If name is already installed l is told so without calling the backend.
func (in *Installer) Install(name Name, l Listener) {
	in.request(name, l)
}

// Await installs name and blocks until the attempt finishes or ctx is done.
// Cancelling ctx stops the wait only; the attempt itself runs to completion.
func (in *Installer) Await(ctx context.Context, name Name) error {
	a := in.request(name, nil)
	if a == nil {
		return nil
	}
	select {
	case <-a.done:
		return a.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// InstallDeferred queues name for a later RunDeferred. Installed, in-flight
// and already queued modules are ignored.
func (in *Installer) InstallDeferred(name Name) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if _, busy := in.inflight[name]; busy || in.registry.IsInstalled(name) || slices.Contains(in.deferred, name) {
		return
	}
	in.deferred = append(in.deferred, name)
	log.Debug("module %s: install deferred", name)
}

// Deferred returns the queued module names in request order.
func (in *Installer) Deferred() []Name {
	in.mu.Lock()
	defer in.mu.Unlock()
	return slices.Clone(in.deferred)
}

// RunDeferred drains the deferred queue, installing at most
// Options.DeferredConcurrency modules at a time. Every queued module is
// attempted; the first failure is returned.
func (in *Installer) RunDeferred(ctx context.Context) error {
	in.mu.Lock()
	queue := in.deferred
	in.deferred = nil
	in.mu.Unlock()

	var g errgroup.Group
	g.SetLimit(in.concurrency)
	for _, name := range queue {
		name := name
		g.Go(func() error {
			return in.Await(ctx, name)
		})
	}
	return g.Wait()
}

// InFlight returns the modules with an attempt currently running.
func (in *Installer) InFlight() []Name {
	in.mu.Lock()
	defer in.mu.Unlock()
	names := make([]Name, 0, len(in.inflight))
	for n := range in.inflight {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// request starts or joins an attempt. It returns nil when name is already
// installed.
func (in *Installer) request(name Name, l Listener) *attempt {
	in.mu.Lock()
	if a, ok := in.inflight[name]; ok {
		if l != nil {
			a.listeners = append(a.listeners, l)
		}
		in.mu.Unlock()
		log.Debug("module %s: joined in-flight install", name)
		return a
	}

	if in.registry.IsInstalled(name) {
		if l != nil {
			in.dispatcherLocked(name).post(func() { l(true) })
		}
		in.mu.Unlock()
		return nil
	}

	a := &attempt{done: make(chan struct{})}
	if l != nil {
		a.listeners = append(a.listeners, l)
	}
	in.inflight[name] = a
	in.deferred = slices.DeleteFunc(in.deferred, func(n Name) bool { return n == name })
	in.mu.Unlock()

	in.registry.markInstalling(name)
	go in.run(name, a)
	return a
}

func (in *Installer) run(name Name, a *attempt) {
	logger := log.With("module", name.String())
	logger.Info("install started")
	start := time.Now()

	err := in.callBackend(name)
	if err != nil {
		err = fmt.Errorf("module %s: %w: %w", name, ErrInstallFailed, err)
		in.registry.markFailed(name, err)
		logger.Warn("install failed", "err", err, "elapsed", time.Since(start))
	} else {
		in.registry.SetInstalled(name)
		logger.Info("install finished", "elapsed", time.Since(start))
	}

	in.mu.Lock()
	delete(in.inflight, name)
	a.err = err
	close(a.done)
	listeners := a.listeners
	a.listeners = nil
	success := err == nil
	d := in.dispatcherLocked(name)
	for _, l := range listeners {
		l := l
		d.post(func() { l(success) })
	}
	in.mu.Unlock()
}

// callBackend runs one bounded backend call. A panicking backend counts as a
// failed attempt so listeners are still notified.
func (in *Installer) callBackend(name Name) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), in.timeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("backend panic: %v", r)
		}
	}()
	err = in.backend.Install(ctx, name)
	if err == nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = ctx.Err()
	}
	return err
}

func (in *Installer) dispatcherLocked(name Name) *dispatcher {
	d, ok := in.dispatchers[name]
	if !ok {
		d = &dispatcher{}
		in.dispatchers[name] = d
	}
	return d
}

// dispatcher runs posted callbacks one at a time, in post order, on a
// goroutine it owns while work is queued.
type dispatcher struct {
	mu      sync.Mutex
	queue   []func()
	running bool
}

func (d *dispatcher) post(fn func()) {
	d.mu.Lock()
	d.queue = append(d.queue, fn)
	if d.running {
		d.mu.Unlock()
		return
	}
	d.running = true
	d.mu.Unlock()
	go d.drain()
}

func (d *dispatcher) drain() {
	for {
		d.mu.Lock()
		if len(d.queue) == 0 {
			d.running = false
			d.mu.Unlock()
			return
		}
		fn := d.queue[0]
		d.queue = d.queue[1:]
		d.mu.Unlock()
		safeCall(fn)
	}
}

func safeCall(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("install listener panicked: %v", r)
		}
	}()
	fn()
}
