// Package wrapper is the host-facing call boundary: it converts a
// positional argument tuple into a typed parse request using a fixed
// format descriptor and dispatches it to a parser entry point. The
// layer is deliberately thin; it owns no state and performs no I/O.
package wrapper

import (
	"context"
	"fmt"

	"github.com/replaylab/demobridge/internal/parser"
)

// ModuleName is the name the callable table is registered under.
const ModuleName = "wrapper"

// Callable is a registered module function: variadic positional
// arguments in, one result or error out. Arity checking is the
// callable's own job, not the table's.
type Callable func(ctx context.Context, args []any) (*parser.Result, error)

// Module is a name→callable table. Building one allocates no shared
// state, so construction is idempotent: every NewModule call returns
// an independently usable handle.
type Module struct {
	name  string
	funcs map[string]Callable
}

// NewModule builds the wrapper module over the given entry point. It
// registers exactly one callable, "parse".
func NewModule(entry parser.EntryPoint) *Module {
	adapter := NewAdapter(entry)
	return &Module{
		name: ModuleName,
		funcs: map[string]Callable{
			"parse": adapter.Call,
		},
	}
}

func (m *Module) Name() string { return m.name }

// Names lists the registered callables.
func (m *Module) Names() []string {
	names := make([]string, 0, len(m.funcs))
	for name := range m.funcs {
		names = append(names, name)
	}
	return names
}

// Lookup returns the named callable.
func (m *Module) Lookup(name string) (Callable, error) {
	fn, ok := m.funcs[name]
	if !ok {
		return nil, fmt.Errorf("module %s has no callable %q", m.name, name)
	}
	return fn, nil
}

// Call dispatches to a registered callable by name.
func (m *Module) Call(ctx context.Context, name string, args []any) (*parser.Result, error) {
	fn, err := m.Lookup(name)
	if err != nil {
		return nil, err
	}
	return fn(ctx, args)
}
