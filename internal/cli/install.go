// ABOUTME: install subcommand: requests installs and reports each outcome
// ABOUTME: Plain line output off a TTY; a Bubble Tea progress view on one

package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mauromedda/featuremod-go/internal/log"
	"github.com/mauromedda/featuremod-go/internal/module"
)

// outcome is the result of one install request.
type outcome struct {
	name module.Name
	ok   bool
	err  error
}

func (r *Runner) install(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return r.installDeferred(ctx)
	}
	names, err := r.modules(args)
	if err != nil {
		return err
	}

	var results []outcome
	if r.TTY {
		results, err = r.installInteractive(names)
	} else {
		results, err = r.installPlain(ctx, names)
	}
	if err != nil {
		return err
	}

	failed := 0
	for _, o := range results {
		if !o.ok {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d modules failed to install: %w", failed, len(results), module.ErrInstallFailed)
	}
	return nil
}

// installDeferred installs the eager modules queued at startup, bounded by
// the configured deferred concurrency.
func (r *Runner) installDeferred(ctx context.Context) error {
	queued := r.App.Installer.Deferred()
	if len(queued) == 0 {
		r.printf("nothing to install: every eager module is installed\n")
		return nil
	}

	var mu sync.Mutex
	unsubscribe := r.App.Registry.Subscribe(func(c module.Change) {
		mu.Lock()
		defer mu.Unlock()
		switch c.To {
		case module.Installing:
			r.printf("%s: installing\n", c.Name)
		case module.Installed:
			r.printf("%s: installed\n", c.Name)
		case module.Failed:
			r.printf("%s: failed: %v\n", c.Name, c.Err)
		}
	})
	defer unsubscribe()

	return r.App.RunDeferred(ctx)
}

// modules validates every argument against the catalog, dropping duplicates.
func (r *Runner) modules(args []string) ([]module.Name, error) {
	seen := make(map[module.Name]bool, len(args))
	var names []module.Name
	for _, a := range args {
		n, err := r.App.Module(a)
		if err != nil {
			return nil, err
		}
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	return names, nil
}

// request issues an install per name and delivers each outcome to report,
// including the registry's last error for failures.
func (r *Runner) request(names []module.Name, report func(outcome)) {
	for _, n := range names {
		n := n
		r.App.Installer.Install(n, func(ok bool) {
			o := outcome{name: n, ok: ok}
			if !ok {
				o.err = r.App.Registry.Record(n).LastError
			}
			report(o)
		})
	}
}

func (r *Runner) installPlain(ctx context.Context, names []module.Name) ([]outcome, error) {
	var mu sync.Mutex
	var results []outcome
	done := make(chan struct{})

	unsubscribe := r.App.Registry.Subscribe(func(c module.Change) {
		if c.To == module.Installing {
			mu.Lock()
			r.printf("%s: installing\n", c.Name)
			mu.Unlock()
		}
	})
	defer unsubscribe()

	r.request(names, func(o outcome) {
		mu.Lock()
		defer mu.Unlock()
		if o.ok {
			r.printf("%s: installed\n", o.name)
		} else {
			r.printf("%s: failed: %v\n", o.name, o.err)
		}
		results = append(results, o)
		if len(results) == len(names) {
			close(done)
		}
	})

	select {
	case <-done:
		return results, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *Runner) installInteractive(names []module.Name) ([]outcome, error) {
	// Installer logs would tear through the progress view; hold them until it closes.
	held := &lockedBuffer{}
	log.SetOutput(held)
	defer func() {
		log.SetOutput(os.Stderr)
		held.WriteTo(os.Stderr)
	}()

	model := newProgressModel(names, r.App.Registry, r.Width)
	p := tea.NewProgram(model, tea.WithOutput(os.Stderr))

	unsubscribe := r.App.Registry.Subscribe(func(c module.Change) {
		p.Send(changeMsg(c))
	})
	defer unsubscribe()

	go r.request(names, func(o outcome) { p.Send(doneMsg(o)) })

	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("bubble tea: %w", err)
	}
	m := final.(progressModel)
	if m.interrupted {
		return nil, context.Canceled
	}
	return m.outcomes(), nil
}

// lockedBuffer collects log output written from installer goroutines.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) WriteTo(w io.Writer) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.WriteTo(w)
}
