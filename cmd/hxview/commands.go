package main

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/pthm/hxview"
	"github.com/pthm/hxview/render"
	"github.com/pthm/hxview/store"
)

func runCompile(args []string) error {
	fs := flag.NewFlagSet("compile", flag.ExitOnError)
	var vf viewFlags
	vf.register(fs)
	fs.Parse(args)

	cfg, reg, view, model, err := vf.load()
	if err != nil {
		return err
	}

	c := hxview.NewCompiler(vf.view,
		hxview.WithSettings(cfg.Settings),
		hxview.WithLogger(newLogger()),
	)
	frag, err := c.Compile(reg, view.Node, c.Context(model))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	if isTerminal(os.Stdout) {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(frag.JSONML())
}

func runRender(args []string) error {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	var vf viewFlags
	vf.register(fs)
	fs.Parse(args)

	cfg, reg, view, model, err := vf.load()
	if err != nil {
		return err
	}

	doc, err := render.NewDocument([]byte(cfg.Key))
	if err != nil {
		return err
	}
	d := hxview.NewDriver(vf.view, doc,
		hxview.WithSettings(cfg.Settings),
		hxview.WithLogger(newLogger()),
		hxview.WithTelemetry(cfg.Telemetry),
		hxview.WithMapWidget(&render.MapboxWidget{AccessToken: cfg.MapboxToken, Doc: doc}),
	)
	ctx := context.Background()
	if err := d.Render(ctx, reg, view, model); err != nil {
		return err
	}
	if err := doc.Body().Render(ctx, os.Stdout); err != nil {
		return err
	}
	fmt.Println()
	return nil
}

func runImport(args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	dbPath := fs.String("db", "hxview.db", "bbolt database")
	fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("usage: hxview import -db <file> <views>")
	}

	raw := map[string]any{}
	if err := readYAML(fs.Arg(0), &raw); err != nil {
		return err
	}

	s, err := store.Open(*dbPath)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.PutRegistry(raw); err != nil {
		return err
	}
	names, err := s.Names()
	if err != nil {
		return err
	}
	fmt.Printf("imported %d views into %s (%d stored)\n", len(raw), *dbPath, len(names))
	return nil
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	var vf viewFlags
	vf.register(fs)
	addr := fs.String("addr", "", "listen address")
	key := fs.String("key", "", "token key")
	fs.Parse(args)

	cfg, reg, view, model, err := vf.load()
	if err != nil {
		return err
	}
	if *addr == "" {
		*addr = cfg.Addr
	}
	if *addr == "" {
		*addr = ":8080"
	}
	if *key == "" {
		*key = cfg.Key
	}
	secret := []byte(*key)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return err
		}
	}

	logger := newLogger()
	opts := []render.Option{render.WithLogger(logger)}
	if cfg.Title != "" {
		opts = append(opts, render.WithTitle(cfg.Title))
	}
	if cfg.MapboxToken != "" {
		opts = append(opts, render.WithHead(render.MapboxHead))
	}
	doc, err := render.NewDocument(secret, opts...)
	if err != nil {
		return err
	}

	a := &app{reg: reg, model: model, logger: logger}
	a.driver = hxview.NewDriver(vf.view, doc,
		hxview.WithSettings(cfg.Settings),
		hxview.WithUpdater(a),
		hxview.WithLogger(logger),
		hxview.WithTelemetry(cfg.Telemetry),
		hxview.WithMapWidget(&render.MapboxWidget{AccessToken: cfg.MapboxToken, Doc: doc}),
	)
	if err := a.driver.Render(context.Background(), reg, view, model); err != nil {
		return err
	}

	logger.Printf("serving view %s on %s", vf.view, *addr)
	return http.ListenAndServe(*addr, doc.Handler())
}

// app is the serve command's model. Every message is recorded under
// "events" and its value stored under "values"[event], then the view is
// rendered again.
type app struct {
	mu     sync.Mutex
	reg    hxview.Registry
	model  map[string]any
	driver *hxview.Driver
	logger interface{ Printf(string, ...any) }
}

// Update implements hxview.Updater.
func (a *app) Update(msg hxview.Message) {
	a.mu.Lock()
	defer a.mu.Unlock()

	events, _ := a.model["events"].([]any)
	a.model["events"] = append(events, map[string]any{
		"effect": msg.Effect,
		"event":  msg.Event,
		"value":  msg.Value,
	})
	values, _ := a.model["values"].(map[string]any)
	if values == nil {
		values = map[string]any{}
		a.model["values"] = values
	}
	values[fmt.Sprint(msg.Event)] = msg.Value

	if err := a.driver.Render(context.Background(), a.reg, nil, a.model); err != nil {
		a.logger.Printf("render after %v: %v", msg.Event, err)
	}
}
