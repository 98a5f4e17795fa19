package main

import (
	"context"
	_ "embed"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/pthm/hxview"
	"github.com/pthm/hxview/render"
)

//go:embed views.yaml
var views []byte

func main() {
	reg, err := hxview.LoadRegistryYAML(views)
	if err != nil {
		log.Fatal(err)
	}
	root, ok := reg.Lookup("root")
	if !ok {
		log.Fatal("views.yaml has no root view")
	}

	// Create document with a signing key (in production, use a real secret)
	key := []byte("example-key-must-be-32-bytes!!")
	doc, err := render.NewDocument(key, render.WithTitle("hxview todos"))
	if err != nil {
		log.Fatal(err)
	}

	store := NewStore()
	logger := log.New(os.Stderr, "todos: ", log.LstdFlags)
	driver := hxview.NewDriver("todos", doc,
		hxview.WithUpdater(store),
		hxview.WithLogger(logger),
		hxview.WithTelemetry(true),
	)
	store.render = func(model map[string]any) {
		if err := driver.Render(context.Background(), reg, nil, model); err != nil {
			logger.Printf("render: %v", err)
		}
	}
	if err := driver.Render(context.Background(), reg, &root, store.Model()); err != nil {
		log.Fatal(err)
	}

	// Start server
	addr := ":8080"
	fmt.Printf("Starting server at http://localhost%s\n", addr)
	if err := http.ListenAndServe(addr, doc.Handler()); err != nil {
		log.Fatal(err)
	}
}
