package hxview

import (
	"io"
	"log"
)

// Option configures a Compiler or a Driver.
type Option func(*options)

type options struct {
	settings    Context
	encoder     Encoder
	updater     Updater
	logger      *log.Logger
	highlighter Highlighter
	markdown    MarkdownRenderer
	markup      MarkupParser
	maps        MapWidget
	scheduler   Scheduler
	telemetry   bool
}

// discard is the default logger; nothing is written unless WithLogger is
// given.
var discard = log.New(io.Discard, "", 0)

func buildOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.settings == nil {
		o.settings = Context{}
	}
	if o.encoder == nil {
		o.encoder = NewExprEncoder()
	}
	if o.updater == nil {
		o.updater = UpdateFunc(func(Message) {})
	}
	if o.logger == nil {
		o.logger = discard
	}
	if o.highlighter == nil {
		o.highlighter = NewChromaHighlighter()
	}
	if o.markdown == nil {
		o.markdown = NewGoldmarkRenderer()
	}
	if o.markup == nil {
		o.markup = HTMLParser{}
	}
	return o
}

// WithSettings sets the ambient configuration merged into every context the
// compiler builds.
func WithSettings(settings map[string]any) Option {
	return func(o *options) {
		o.settings = Context{}.With(settings)
	}
}

// WithEncoder replaces the default ExprEncoder.
func WithEncoder(enc Encoder) Option {
	return func(o *options) {
		o.encoder = enc
	}
}

// WithUpdater sets the sink event handlers forward messages to.
func WithUpdater(u Updater) Option {
	return func(o *options) {
		o.updater = u
	}
}

// WithLogger sets the diagnostic logger. Handler evaluation failures, compile
// failures and telemetry are written here.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithHighlighter replaces the chroma based highlighter of code nodes.
func WithHighlighter(h Highlighter) Option {
	return func(o *options) {
		o.highlighter = h
	}
}

// WithMarkdown replaces the goldmark based markdown renderer.
func WithMarkdown(m MarkdownRenderer) Option {
	return func(o *options) {
		o.markdown = m
	}
}

// WithMarkupParser replaces the markup parser used by code and markdown
// nodes.
func WithMarkupParser(p MarkupParser) Option {
	return func(o *options) {
		o.markup = p
	}
}

// WithMapWidget sets the widget map nodes attach to. Without one, map nodes
// still render their placeholder and the deferred task only logs.
func WithMapWidget(w MapWidget) Option {
	return func(o *options) {
		o.maps = w
	}
}

// WithScheduler sets where deferred widget tasks are queued. A Driver
// schedules onto itself unless this is given.
func WithScheduler(s Scheduler) Option {
	return func(o *options) {
		o.scheduler = s
	}
}

// WithTelemetry makes the Driver log compile and render durations.
func WithTelemetry(on bool) Option {
	return func(o *options) {
		o.telemetry = on
	}
}
