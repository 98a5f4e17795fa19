package main

import (
	"flag"
	"fmt"

	"log"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pthm/hxview"
	"github.com/pthm/hxview/store"
	"gopkg.in/yaml.v3"
)

// config is the optional YAML config file.
type config struct {
	Settings    map[string]any `yaml:"settings"`
	Telemetry   bool           `yaml:"telemetry"`
	MapboxToken string         `yaml:"mapbox_token"`
	Addr        string         `yaml:"addr"`
	DB          string         `yaml:"db"`
	Key         string         `yaml:"key"`
	Title       string         `yaml:"title"`
}

// viewFlags are shared by compile, render and serve.
type viewFlags struct {
	views  string
	db     string
	view   string
	model  string
	config string
}

func (f *viewFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.views, "views", "", "views document")
	fs.StringVar(&f.db, "db", "", "bbolt database holding views")
	fs.StringVar(&f.view, "view", "root", "root view name")
	fs.StringVar(&f.model, "model", "", "model document")
	fs.StringVar(&f.config, "config", "", "config file")
}

// load reads the config, the registry, the root view and the model.
func (f *viewFlags) load() (*config, hxview.Registry, *hxview.View, map[string]any, error) {
	cfg := &config{}
	if f.config != "" {
		if err := readYAML(f.config, cfg); err != nil {
			return nil, nil, nil, nil, err
		}
	}
	if f.db == "" {
		f.db = cfg.DB
	}

	var reg hxview.Registry
	switch {
	case f.views != "":
		raw := map[string]any{}
		if err := readYAML(f.views, &raw); err != nil {
			return nil, nil, nil, nil, err
		}
		reg = hxview.DecodeRegistry(raw)
	case f.db != "":
		s, err := store.Open(f.db)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		defer s.Close()
		if reg, err = s.Registry(); err != nil {
			return nil, nil, nil, nil, err
		}
	default:
		return nil, nil, nil, nil, fmt.Errorf("one of -views or -db is required")
	}

	view, ok := reg.Lookup(f.view)
	if !ok {
		return nil, nil, nil, nil, fmt.Errorf("%w: %s", hxview.ErrNoSuchView, f.view)
	}

	model := map[string]any{}
	if f.model != "" {
		if err := readYAML(f.model, &model); err != nil {
			return nil, nil, nil, nil, err
		}
	}
	return cfg, reg, &view, model, nil
}

// readYAML decodes a YAML (or JSON, which is YAML) file.
func readYAML(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// newLogger logs to stderr, with a highlighted prefix on terminals.
func newLogger() *log.Logger {
	prefix := "hxview: "
	if isTerminal(os.Stderr) {
		prefix = "\x1b[36mhxview:\x1b[0m "
	}
	return log.New(os.Stderr, prefix, log.LstdFlags)
}
