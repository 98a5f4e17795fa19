package render

import (
	"encoding/json"
	"fmt"

	"github.com/pthm/hxview"
)

// MapboxHead is the page head markup loading mapbox-gl.
const MapboxHead = `<link href="https://api.mapbox.com/mapbox-gl-js/v1.13.3/mapbox-gl.css" rel="stylesheet">` +
	`<script src="https://api.mapbox.com/mapbox-gl-js/v1.13.3/mapbox-gl.js"></script>`

// MapboxWidget is an hxview.MapWidget creating mapbox-gl maps in the
// browser. Create and AddMarker queue scripts on the Document; they run once
// the body holding the placeholder has been swapped in.
//
// The access token is configuration passed in at startup:
//
//	maps := &render.MapboxWidget{AccessToken: cfg.MapboxToken, Doc: doc}
//	d := hxview.NewDriver("app", doc, hxview.WithMapWidget(maps))
type MapboxWidget struct {
	AccessToken string
	Doc         *Document
}

// Create implements hxview.MapWidget.
func (w *MapboxWidget) Create(cfg hxview.MapConfig) (hxview.MapInstance, error) {
	if w.Doc == nil {
		return nil, fmt.Errorf("%w: mapbox widget has no document", hxview.ErrWidget)
	}
	opts := map[string]any{
		"container": cfg.Container,
		"style":     cfg.Style,
		"zoom":      cfg.Zoom,
		"center":    []float64{cfg.Center.Lon, cfg.Center.Lat},
	}
	w.Doc.AddScript(fmt.Sprintf(
		"mapboxgl.accessToken=%s;window.hxviewMaps=window.hxviewMaps||{};window.hxviewMaps[%s]=new mapboxgl.Map(%s);",
		jsValue(w.AccessToken), jsValue(cfg.Container), jsValue(opts)))
	return &mapboxMap{doc: w.Doc, container: cfg.Container}, nil
}

type mapboxMap struct {
	doc       *Document
	container string
}

func (m *mapboxMap) AddMarker(at hxview.LngLat) error {
	m.doc.AddScript(fmt.Sprintf(
		"new mapboxgl.Marker().setLngLat(%s).addTo(window.hxviewMaps[%s]);",
		jsValue([]float64{at.Lon, at.Lat}), jsValue(m.container)))
	return nil
}

// jsValue writes v as a JavaScript literal. json.Marshal escapes <, > and &,
// so the result is safe inside a script element.
func jsValue(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}
