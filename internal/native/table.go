// ABOUTME: In-process loader serving Go functions registered as module entry points
// ABOUTME: Chain tries several loaders in order, skipping those without entry points

package native

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Loader resolves the entry points of an installed module.
type Loader interface {
	Load(ctx context.Context, module string) (Symbols, error)
}

// TableLoader serves entry points registered in-process.
type TableLoader struct {
	mu    sync.RWMutex
	table map[string][]Symbol
}

// NewTableLoader creates an empty table loader.
func NewTableLoader() *TableLoader {
	return &TableLoader{table: make(map[string][]Symbol)}
}

// Register adds fn as entry point name of module. fn must be a func value.
func (t *TableLoader) Register(module, name string, fn any) {
	if fn == nil {
		panic(fmt.Sprintf("native: nil entry point %s/%s", module, name))
	}
	t.mu.Lock()
	t.table[module] = append(t.table[module], Symbol{Name: name, Func: fn})
	t.mu.Unlock()
}

// Load returns the symbols registered for module.
func (t *TableLoader) Load(_ context.Context, module string) (Symbols, error) {
	t.mu.RLock()
	syms := t.table[module]
	t.mu.RUnlock()
	if len(syms) == 0 {
		return Symbols{}, fmt.Errorf("%s: %w", module, ErrNoEntryPoints)
	}
	return NewSymbols(module, syms), nil
}

// Chain consults loaders in order. A loader answering ErrNoEntryPoints passes
// the module on to the next one; any other error stops the search.
type Chain []Loader

// Load implements Loader.
func (c Chain) Load(ctx context.Context, module string) (Symbols, error) {
	for _, l := range c {
		syms, err := l.Load(ctx, module)
		if errors.Is(err, ErrNoEntryPoints) {
			continue
		}
		return syms, err
	}
	return Symbols{}, fmt.Errorf("%s: %w", module, ErrNoEntryPoints)
}
