// ABOUTME: Resolved entry-point table for one module with typed binding
// ABOUTME: Bind assigns Go funcs directly or wraps native addresses via purego

package native

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
)

var (
	// ErrNoEntryPoints is returned by a loader that knows nothing about a module.
	ErrNoEntryPoints = errors.New("no entry points")

	// ErrUnknownSymbol is returned when a symbol is not exported by a module.
	ErrUnknownSymbol = errors.New("unknown symbol")

	// ErrUnsupported is returned on platforms without dynamic loading.
	ErrUnsupported = errors.New("native loading not supported on this platform")
)

// Symbol is one resolved entry point. Exactly one of Addr or Func is set.
type Symbol struct {
	Name string
	Addr uintptr // address inside a loaded shared library
	Func any     // in-process Go implementation
}

// Symbols is the immutable set of entry points resolved for a module.
type Symbols struct {
	module string
	table  map[string]Symbol
}

// NewSymbols builds a symbol set. Later entries with a duplicate name win.
func NewSymbols(module string, syms []Symbol) Symbols {
	table := make(map[string]Symbol, len(syms))
	for _, s := range syms {
		table[s.Name] = s
	}
	return Symbols{module: module, table: table}
}

// Module returns the module the symbols belong to.
func (s Symbols) Module() string { return s.module }

// Len returns the number of resolved entry points.
func (s Symbols) Len() int { return len(s.table) }

// Names returns the sorted entry-point names.
func (s Symbols) Names() []string {
	names := make([]string, 0, len(s.table))
	for n := range s.table {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Lookup returns the named entry point.
func (s Symbols) Lookup(name string) (Symbol, error) {
	sym, ok := s.table[name]
	if !ok {
		return Symbol{}, fmt.Errorf("%s: %w %q", s.module, ErrUnknownSymbol, name)
	}
	return sym, nil
}

// Bind stores the named entry point into fptr, which must be a non-nil
// pointer to a func variable. Go implementations must match the func type
// exactly; native addresses are wrapped with the platform calling convention.
func (s Symbols) Bind(name string, fptr any) error {
	sym, err := s.Lookup(name)
	if err != nil {
		return err
	}

	pv := reflect.ValueOf(fptr)
	if pv.Kind() != reflect.Pointer || pv.IsNil() || pv.Elem().Kind() != reflect.Func {
		return fmt.Errorf("binding %s: want pointer to func, got %T", name, fptr)
	}

	if sym.Func != nil {
		fv := reflect.ValueOf(sym.Func)
		if fv.Type() != pv.Elem().Type() {
			return fmt.Errorf("binding %s: entry point is %s, target is %s", name, fv.Type(), pv.Elem().Type())
		}
		pv.Elem().Set(fv)
		return nil
	}

	if sym.Addr == 0 {
		return fmt.Errorf("binding %s: nil address", name)
	}
	if err := registerFunc(fptr, sym.Addr); err != nil {
		return fmt.Errorf("binding %s: %w", name, err)
	}
	return nil
}
