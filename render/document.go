package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"sync"

	"github.com/a-h/templ"
	"github.com/pthm/hxview"
	"github.com/pthm/hxview/lib/encoding"
)

// Option configures a Document.
type Option func(*documentOptions)

type documentOptions struct {
	rootID    string
	eventPath string
	title     string
	head      []string
	htmxURL   string
	swap      SwapMode
	sensitive bool
	logger    *log.Logger
}

// WithRootID sets the id of the element the document body is rendered into.
// Defaults to "hxview-root".
func WithRootID(id string) Option {
	return func(o *documentOptions) {
		o.rootID = id
	}
}

// WithEventPath sets the path browser events are posted to. Defaults to
// "/_e".
func WithEventPath(path string) Option {
	return func(o *documentOptions) {
		o.eventPath = path
	}
}

// WithTitle sets the page title.
func WithTitle(title string) Option {
	return func(o *documentOptions) {
		o.title = title
	}
}

// WithHead adds raw markup to the page head, such as widget stylesheets.
func WithHead(markup string) Option {
	return func(o *documentOptions) {
		o.head = append(o.head, markup)
	}
}

// WithHTMX sets the URL htmx is loaded from.
func WithHTMX(url string) Option {
	return func(o *documentOptions) {
		o.htmxURL = url
	}
}

// WithSwap sets how event responses replace the root element. Defaults to
// SwapInner; use SwapNone for handlers whose updates are delivered another
// way.
func WithSwap(mode SwapMode) Option {
	return func(o *documentOptions) {
		o.swap = mode
	}
}

// Sensitive makes handler tokens encrypted instead of signed.
func Sensitive() Option {
	return func(o *documentOptions) {
		o.sensitive = true
	}
}

// WithLogger sets the logger for dispatch failures.
func WithLogger(l *log.Logger) Option {
	return func(o *documentOptions) {
		o.logger = l
	}
}

// Document is a live HTML document and the hxview.Patcher the Driver renders
// into.
//
// Each Patch replaces the rendered body and starts a new generation of event
// handlers. Handlers are exposed to the browser through signed tokens
// (HandlerRef); a token from an older generation is rejected as stale, since
// the element it was bound to is gone.
//
//	doc, err := render.NewDocument(key)
//	d := hxview.NewDriver("app", doc, hxview.WithUpdater(app))
//	http.Handle("/", doc.Handler())
type Document struct {
	enc  *encoding.Encoder
	opts documentOptions

	mu         sync.RWMutex
	generation uint64
	fragment   hxview.Fragment
	body       string
	handlers   map[uint32]*hxview.Handler
	scripts    []string

	// dispatchMu serializes event dispatch: handlers call into the
	// application, which renders again, one event at a time.
	dispatchMu sync.Mutex

	// OnError is called when event dispatch fails.
	// Customize this to handle errors appropriately for your application.
	OnError func(http.ResponseWriter, *http.Request, error)
}

// NewDocument creates a document whose handler tokens are sealed with key.
func NewDocument(key []byte, opts ...Option) (*Document, error) {
	enc, err := encoding.NewEncoder(key)
	if err != nil {
		return nil, fmt.Errorf("render: failed to create encoder: %w", err)
	}
	o := documentOptions{
		rootID:    "hxview-root",
		eventPath: "/_e",
		title:     "hxview",
		htmxURL:   "https://unpkg.com/htmx.org@2.0.4",
		swap:      SwapInner,
		logger:    log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(&o)
	}

	d := &Document{
		enc:      enc,
		opts:     o,
		handlers: make(map[uint32]*hxview.Handler),
	}
	d.OnError = func(w http.ResponseWriter, r *http.Request, err error) {
		switch {
		case IsNotFound(err):
			http.Error(w, "Not found", http.StatusNotFound)
		case IsTokenError(err):
			http.Error(w, "Bad request", http.StatusBadRequest)
		case IsStale(err):
			http.Error(w, "Stale event", http.StatusConflict)
		default:
			http.Error(w, "Internal error", http.StatusInternalServerError)
		}
	}
	return d, nil
}

// Patch implements hxview.Patcher. The new body replaces the old one only if
// it renders completely.
func (d *Document) Patch(ctx context.Context, f hxview.Fragment) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	w := &wiring{
		doc:        d,
		generation: d.generation + 1,
		handlers:   make(map[uint32]*hxview.Handler),
	}
	var buf bytes.Buffer
	if err := Component(f, w).Render(ctx, &buf); err != nil {
		return err
	}

	d.generation = w.generation
	d.handlers = w.handlers
	d.fragment = f
	d.body = buf.String()
	d.scripts = nil
	return nil
}

// AddScript appends a script run after the current body. Scripts are
// dropped by the next Patch.
func (d *Document) AddScript(js string) {
	d.mu.Lock()
	d.scripts = append(d.scripts, js)
	d.mu.Unlock()
}

// Generation returns the number of completed patches.
func (d *Document) Generation() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.generation
}

// Fragment returns the fragment of the current body.
func (d *Document) Fragment() hxview.Fragment {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.fragment
}

// Body returns a component writing the current body and its scripts.
func (d *Document) Body() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		d.mu.RLock()
		body, scripts := d.body, d.scripts
		d.mu.RUnlock()

		if _, err := io.WriteString(w, body); err != nil {
			return err
		}
		for _, s := range scripts {
			if _, err := io.WriteString(w, "<script>"+s+"</script>"); err != nil {
				return err
			}
		}
		return nil
	})
}

// Page returns a component writing a complete HTML page around the body.
func (d *Document) Page() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		head := `<!DOCTYPE html><html><head><meta charset="utf-8"><title>` +
			templ.EscapeString(d.opts.title) + `</title><script src="` +
			templ.EscapeString(d.opts.htmxURL) + `"></script>`
		for _, h := range d.opts.head {
			head += h
		}
		head += `</head><body><div id="` + templ.EscapeString(d.opts.rootID) + `">`
		if _, err := io.WriteString(w, head); err != nil {
			return err
		}
		if err := d.Body().Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</div></body></html>`)
		return err
	})
}

// Handler returns the HTTP handler serving the page and its events.
//
// GET and HEAD requests receive the full page. POSTs to the event path
// dispatch the event and respond with the re-rendered body. Mutating
// requests require the HX-Request: true header that HTMX sends.
func (d *Document) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(d.opts.eventPath, d.handleEvent)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := Render(w, r, d.Page()); err != nil {
			d.opts.logger.Printf("render: page: %v", err)
		}
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// CSRF protection: mutating methods require HX-Request header
		if r.Method != http.MethodGet && r.Method != http.MethodHead && !IsHTMX(r) {
			http.Error(w, "Forbidden: HTMX request required", http.StatusForbidden)
			return
		}
		mux.ServeHTTP(w, r)
	})
}

func (d *Document) handleEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		d.OnError(w, r, fmt.Errorf("%w: %v", ErrInvalidToken, err))
		return
	}

	if err := d.Dispatch(r.FormValue("p"), eventFromRequest(r)); err != nil {
		d.opts.logger.Printf("render: dispatch: %v", err)
		d.OnError(w, r, err)
		return
	}
	if err := Render(w, r, d.Body()); err != nil {
		d.opts.logger.Printf("render: body: %v", err)
	}
}

// Dispatch fires the handler the token refers to.
func (d *Document) Dispatch(token string, ev hxview.Event) error {
	var ref HandlerRef
	if err := d.enc.Decode(token, d.opts.sensitive, &ref); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	// The generation is checked under dispatchMu, so an event queued behind
	// one that re-renders sees the new generation.
	d.dispatchMu.Lock()
	defer d.dispatchMu.Unlock()

	d.mu.RLock()
	generation := d.generation
	h, ok := d.handlers[ref.ID]
	d.mu.RUnlock()

	switch {
	case generation == 0:
		return ErrNotRendered
	case ref.Generation != generation:
		return ErrStaleHandler
	case !ok:
		return ErrNotFound
	}

	h.Fire(ev)
	return nil
}

func eventFromRequest(r *http.Request) hxview.Event {
	ev := hxview.Event{
		Type: r.FormValue("type"),
		Key:  r.FormValue("key"),
	}
	if _, ok := r.Form["value"]; ok {
		ev.Target.Value = r.FormValue("value")
	}
	if r.MultipartForm != nil {
		ev.Target.Files = filesOf(r.MultipartForm)
	}
	return ev
}

func filesOf(form *multipart.Form) []hxview.File {
	var files []hxview.File
	for _, headers := range form.File {
		for _, fh := range headers {
			files = append(files, hxview.File{
				Name:        fh.Filename,
				Size:        fh.Size,
				ContentType: fh.Header.Get("Content-Type"),
			})
		}
	}
	return files
}
