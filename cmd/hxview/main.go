package main

import (
	"fmt"
	"os"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "compile":
		err = runCompile(args)
	case "render":
		err = runRender(args)
	case "import":
		err = runImport(args)
	case "serve":
		err = runServe(args)
	case "version":
		fmt.Printf("hxview version %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`hxview - declarative view compiler

Usage:
  hxview <command> [arguments]

Commands:
  compile [flags]          Compile a view and print its fragment tree as JSON
  render [flags]           Compile a view and print it as HTML
  import -db <file> <views> Store a views document in a bbolt database
  serve [flags]            Serve a view over HTTP with live event handling
  version                  Print version
  help                     Show this help

Flags for compile, render and serve:
  -views <file>            Views document (YAML or JSON)
  -db <file>               Read views from a bbolt database instead
  -view <name>             Root view name (default "root")
  -model <file>            Model document (YAML or JSON)
  -config <file>           Config file (settings, telemetry, mapbox_token, ...)

Flags for serve:
  -addr <addr>             Listen address (default ":8080")
  -key <secret>            Key sealing handler tokens (random if empty)

Examples:
  hxview compile -views views.yaml -model model.yaml
  hxview import -db views.db views.yaml
  hxview serve -db views.db -config hxview.yaml`)
}
