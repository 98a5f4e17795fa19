// Package hxviewecho provides Echo framework integration for hxview
// documents.
//
// Mount a document onto an Echo instance or group, then render into it with
// a Driver:
//
//	e := echo.New()
//	doc := hxviewecho.Mount(e)
//	d := hxview.NewDriver("app", doc, hxview.WithUpdater(app))
//
// Or mount on a group with middleware:
//
//	g := e.Group("/app", authMiddleware)
//	doc := hxviewecho.MountGroup(g)
package hxviewecho

import (
	"crypto/rand"
	"fmt"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/pthm/hxview/render"
)

// Option configures the Mount and MountGroup functions.
type Option func(*options)

type options struct {
	key  []byte
	path string
	doc  []render.Option
}

// WithKey sets the key handler tokens are sealed with.
// The key should be at least 32 bytes of cryptographically random data.
// If not provided, a random key is generated (suitable for development only).
func WithKey(key []byte) Option {
	return func(o *options) {
		o.key = key
	}
}

// WithPath sets the URL path the document is served under.
// Defaults to "/". Events are posted to the path followed by "_e".
func WithPath(path string) Option {
	return func(o *options) {
		o.path = path
	}
}

// WithDocument passes options through to render.NewDocument.
func WithDocument(opts ...render.Option) Option {
	return func(o *options) {
		o.doc = append(o.doc, opts...)
	}
}

// Mount creates a document and serves it on an Echo instance.
//
//	e := echo.New()
//	doc := hxviewecho.Mount(e)
//
//	// With options:
//	doc := hxviewecho.Mount(e, hxviewecho.WithKey(key), hxviewecho.WithPath("/live/"))
func Mount(e *echo.Echo, opts ...Option) *render.Document {
	m := newMount(opts)
	m.bind(e.Any(m.path+"*", m.serve))
	return m.doc
}

// MountGroup creates a document and serves it on an Echo group.
// This allows the document to share middleware with the group (auth, logging, etc.).
//
//	g := e.Group("/app", authMiddleware)
//	doc := hxviewecho.MountGroup(g)
func MountGroup(g *echo.Group, opts ...Option) *render.Document {
	m := newMount(opts)
	m.bind(g.Any(m.path+"*", m.serve))
	return m.doc
}

type mount struct {
	key     []byte
	path    string
	opts    []render.Option
	doc     *render.Document
	handler http.Handler
}

func newMount(opts []Option) *mount {
	o := &options{path: "/"}
	for _, opt := range opts {
		opt(o)
	}
	if !strings.HasSuffix(o.path, "/") {
		o.path += "/"
	}

	key := o.key
	if key == nil {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			panic(fmt.Sprintf("hxviewecho: failed to generate random key: %v", err))
		}
	}
	return &mount{key: key, path: o.path, opts: o.doc}
}

// bind creates the document once the full route path, group prefix
// included, is known.
func (m *mount) bind(routes []*echo.Route) {
	prefix := m.path
	if len(routes) > 0 {
		prefix = strings.TrimSuffix(routes[0].Path, "*")
	}
	opts := append(m.opts, render.WithEventPath(prefix+"_e"))
	doc, err := render.NewDocument(m.key, opts...)
	if err != nil {
		panic(fmt.Sprintf("hxviewecho: %v", err))
	}
	m.doc = doc
	m.handler = doc.Handler()
}

func (m *mount) serve(c echo.Context) error {
	m.handler.ServeHTTP(c.Response(), c.Request())
	return nil
}

// Render writes a templ component to the Echo response.
//
//	func handler(c echo.Context) error {
//	    return hxviewecho.Render(c, doc.Page())
//	}
func Render(c echo.Context, component templ.Component) error {
	c.Response().Header().Set("Content-Type", "text/html; charset=utf-8")
	return component.Render(c.Request().Context(), c.Response())
}
