// ABOUTME: info, remove, and load subcommands
// ABOUTME: info renders MODULE.md with glamour on a TTY; load resolves entry points

package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/mauromedda/featuremod-go/internal/modules/testdummy"
)

func (r *Runner) info(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("info requires exactly one module name")
	}
	name, err := r.App.Module(args[0])
	if err != nil {
		return err
	}
	spec, _ := r.App.Settings.Lookup(string(name))

	r.printf("module:  %s\n", name)
	r.printf("state:   %s\n", r.App.Registry.State(name))
	r.printf("source:  %s\n", spec.Source)

	d, err := r.App.Delivery.Describe(string(name))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if spec.Description != "" {
			r.printf("\n%s\n", spec.Description)
		}
		return nil
	case err != nil:
		return err
	}

	if d.Version != "" {
		r.printf("version: %s\n", d.Version)
	}
	if d.Library != "" {
		r.printf("library: %s\n", d.Library)
		r.printf("entry points: %s\n", strings.Join(d.EntryPoints, ", "))
	}
	if body := strings.TrimSpace(d.Body); body != "" {
		r.printf("\n%s\n", r.markdown(body))
	}
	return nil
}

// markdown renders md for the terminal, returning it unchanged off a TTY or
// when rendering fails.
func (r *Runner) markdown(md string) string {
	if !r.TTY {
		return md
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(r.Width),
	)
	if err != nil {
		return md
	}
	out, err := renderer.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n ")
}

func (r *Runner) remove(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("remove requires at least one module name")
	}
	names, err := r.modules(args)
	if err != nil {
		return err
	}
	for _, n := range names {
		if err := r.App.Remove(n); err != nil {
			return fmt.Errorf("removing %s: %w", n, err)
		}
		r.printf("removed %s\n", n)
	}
	return nil
}

func (r *Runner) load(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("load requires exactly one module name")
	}
	name, err := r.App.Module(args[0])
	if err != nil {
		return err
	}

	if name == testdummy.Name {
		return r.loadTestDummy(ctx)
	}

	p := r.App.Symbols(name)
	if !p.IsModuleInstalled() {
		return fmt.Errorf("module %s is not installed; run: featuremod install %s", name, name)
	}
	if err := p.EnsureNativeLoaded(ctx); err != nil {
		return err
	}
	syms := p.GetImpl()
	r.printf("%s: %d entry points\n", name, syms.Len())
	for _, s := range syms.Names() {
		r.printf("  %s\n", s)
	}
	return nil
}

func (r *Runner) loadTestDummy(ctx context.Context) error {
	p := r.App.TestDummy
	if !p.IsModuleInstalled() {
		return fmt.Errorf("module %s is not installed; run: featuremod install %s", p.Name(), p.Name())
	}
	if err := p.EnsureNativeLoaded(ctx); err != nil {
		return err
	}
	impl := p.GetImpl()
	for _, tc := range []int{testdummy.CaseEcho, testdummy.CaseResource} {
		got, err := impl.Execute(tc)
		if err != nil {
			return err
		}
		r.printf("%s: case %d -> %d\n", p.Name(), tc, got)
	}
	return nil
}
