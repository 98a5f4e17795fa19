package hxview

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Driver is the top-level render loop.
//
// It keeps the last view it was given. Each Render recompiles that view
// against the latest model and, only if compilation succeeds, hands the
// fragment to the Patcher. A failed compile leaves the document as it was:
// partial views are never shown.
//
//	d := hxview.NewDriver("todo", doc, hxview.WithTelemetry(true))
//	err := d.Render(ctx, reg, &root, model)   // first pass sets the view
//	err = d.Render(ctx, reg, nil, model)      // later passes reuse it
//
// Driver is a Scheduler: widget work deferred during a pass runs after the
// patch phase. A Driver is meant to be used from one goroutine.
type Driver struct {
	compiler  *Compiler
	patcher   Patcher
	logger    *log.Logger
	telemetry bool

	view  *View
	queue TaskQueue
}

// NewDriver creates a driver rendering into p. Options configure both the
// driver and its compiler.
func NewDriver(name string, p Patcher, opts ...Option) *Driver {
	o := buildOptions(opts)
	d := &Driver{
		patcher:   p,
		logger:    o.logger,
		telemetry: o.telemetry || Truthy(o.settings["telemetry"]),
	}
	if o.scheduler == nil {
		o.scheduler = d
	}
	d.compiler = newCompiler(name, o)
	return d
}

// Compiler returns the driver's compiler.
func (d *Driver) Compiler() *Compiler {
	return d.compiler
}

// View returns the view the next Render without a view will compile.
func (d *Driver) View() *View {
	return d.view
}

// Defer implements Scheduler.
func (d *Driver) Defer(task func()) {
	d.queue.Defer(task)
}

type compiled struct {
	frag Fragment
	err  error
}

// Render runs one compile-then-patch pass. A non-nil view replaces the
// stored one. Compile errors are logged and returned without patching.
func (d *Driver) Render(ctx context.Context, reg Registry, view *View, model map[string]any) error {
	if view != nil {
		d.view = view
	}
	if d.view == nil {
		return ErrNoView
	}
	// Deferred tasks run even when the pass fails; they cannot be cancelled.
	defer d.queue.Drain()

	c, compileTime := Timed(func() compiled {
		f, err := d.compiler.Compile(reg, d.view.Node, d.compiler.Context(model))
		return compiled{f, err}
	})
	if c.err != nil {
		d.logger.Printf("hxview: can't compile view %s: %v", d.view.Name, c.err)
		return c.err
	}

	err, renderTime := Timed(func() error {
		return d.patcher.Patch(ctx, c.frag)
	})
	if err != nil {
		return fmt.Errorf("hxview: patch: %w", err)
	}

	if d.telemetry {
		d.logger.Printf("[%s][compile %dms][render %dms]",
			d.compiler.Name(), compileTime/time.Millisecond, renderTime/time.Millisecond)
	}
	return nil
}
