package hxview

import (
	"log"
)

// Compiler turns view spec nodes into fragments.
//
// A Compiler is configured once and is read-only afterwards. Compile holds no
// reference to anything it produces; every pass builds a fresh tree.
//
//	c := hxview.NewCompiler("todo",
//	    hxview.WithSettings(settings),
//	    hxview.WithUpdater(store),
//	)
//	frag, err := c.Compile(reg, root, c.Context(model))
//
// The name is the effect name stamped on every message the compiled event
// handlers send.
type Compiler struct {
	name        string
	settings    Context
	encoder     Encoder
	updater     Updater
	logger      *log.Logger
	highlighter Highlighter
	markdown    MarkdownRenderer
	markup      MarkupParser
	maps        MapWidget
	scheduler   Scheduler
}

// NewCompiler creates a compiler for the component with the given name.
//
// Unless WithScheduler is given, deferred widget tasks go to a TaskQueue the
// caller must drain through Scheduler; a Driver does this after each patch.
func NewCompiler(name string, opts ...Option) *Compiler {
	return newCompiler(name, buildOptions(opts))
}

func newCompiler(name string, o *options) *Compiler {
	c := &Compiler{
		name:        name,
		settings:    o.settings,
		encoder:     o.encoder,
		updater:     o.updater,
		logger:      o.logger,
		highlighter: o.highlighter,
		markdown:    o.markdown,
		markup:      o.markup,
		maps:        o.maps,
		scheduler:   o.scheduler,
	}
	if c.scheduler == nil {
		c.scheduler = &TaskQueue{}
	}
	return c
}

// Name returns the effect name of the compiler.
func (c *Compiler) Name() string {
	return c.name
}

// Settings returns the ambient configuration.
func (c *Compiler) Settings() Context {
	return c.settings
}

// Scheduler returns where deferred widget tasks go.
func (c *Compiler) Scheduler() Scheduler {
	return c.scheduler
}

// Context builds a context from the settings overlaid with data.
func (c *Compiler) Context(data map[string]any) Context {
	return c.settings.With(data)
}

func (c *Compiler) debugf(format string, args ...any) {
	if Truthy(c.settings["debug"]) {
		c.logger.Printf(format, args...)
	}
}
