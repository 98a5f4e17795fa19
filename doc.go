// Package hxview compiles declarative view specs into fragment trees that a
// renderer applies to a live document.
//
// A view spec is a tree of JSON or YAML values describing elements, text,
// loops, conditionals, references to other named views and embedded widgets
// (maps, highlighted code, markdown). Compiling a spec against a data model
// yields a Fragment tree: text leaves and [tag, attrs, ...children] elements.
// The render package turns fragments into HTML served to the browser with
// HTMX wiring for event handlers.
//
// # Spec Nodes
//
// Nodes are recognized by shape, in this order:
//
//	[a, b, c]                          list
//	{name, params?, condition?}        reference to a registered view
//	{tag, attrs?, children?}           element
//	{text}                             text
//	{with, loop, context?}             loop over a sequence
//	{either, then, else?}              conditional
//	{map: {id, center, zoom, style, markers}}
//	{timestamp, format?}               formatted time
//	{code: {source, lang}}             highlighted code
//	{markdown}                         markdown
//
// Values inside nodes are expressions evaluated by an Encoder. The default
// ExprEncoder treats everything as a literal except {expr: "..."} objects,
// which are evaluated with expr-lang against the current Context:
//
//	tag: li
//	attrs:
//	  class: {expr: "item.done ? 'done' : 'open'"}
//	  onClick: {expr: "'toggle:' + string(index)"}
//	children:
//	  - text: {expr: "item.title"}
//
// # Contexts
//
// Every context starts from the compiler's settings. The render root adds
// the model; each loop iteration sees item, index and the loop's shared
// context; a referenced view sees only its params. Contexts are copied,
// never modified, so bindings cannot leak between siblings.
//
// # Errors
//
// Compilation is all or nothing. The first failing node aborts the whole
// pass with a *CompileError naming the node, the context and a reason code
// (no_such_view, view_not_supported, ...). The Driver logs it and leaves the
// document untouched.
//
// # Events
//
// Attributes whose name starts with "on" are not evaluated at compile time.
// They become *Handler values; firing one evaluates the attribute against
// the context plus the event and sends a Message{Effect, Event, Value} to
// the Updater.
//
// # Rendering
//
// The Driver holds the current view and runs compile then patch:
//
//	doc, _ := render.NewDocument(key)
//	d := hxview.NewDriver("app", doc, hxview.WithUpdater(app))
//	if err := d.Render(ctx, reg, &root, model); err != nil { ... }
//	http.Handle("/", doc.Handler())
//
// Work that needs the rendered document, such as attaching a map widget to
// its placeholder, is deferred until after the patch.
package hxview
