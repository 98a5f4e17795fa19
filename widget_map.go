package hxview

// mapStyle sizes the placeholder the map widget attaches to.
const mapStyle = "width: 100%; height: 300px"

// LngLat is a map coordinate.
type LngLat struct {
	Lon float64
	Lat float64
}

// MapConfig is what a MapWidget receives to create a map.
type MapConfig struct {
	// Container is the id of the placeholder element.
	Container string
	// Style is the mapbox style URL.
	Style  string
	Zoom   float64
	Center LngLat
}

// StyleURL returns the mapbox style URL for a style name such as "streets".
func StyleURL(style string) string {
	return "mapbox://styles/mapbox/" + style + "-v9"
}

// compileMap returns the placeholder element at once and defers creating
// the widget until the placeholder is in the document. If a later render
// drops the placeholder first, the task still runs. Without a MapWidget
// nothing is deferred and only the placeholder is produced.
func (c *Compiler) compileMap(n *Map, ctx Context) (Fragment, *CompileError) {
	id, err := c.encode(n, n.ID, ctx)
	if err != nil {
		return Fragment{}, err
	}
	center, err := c.encode(n, n.Center, ctx)
	if err != nil {
		return Fragment{}, err
	}
	markers, err := c.encode(n, n.Markers, ctx)
	if err != nil {
		return Fragment{}, err
	}

	zoom, _ := toFloat(n.Zoom)
	cfg := MapConfig{
		Container: textOf(id),
		Style:     StyleURL(n.Style),
		Zoom:      zoom,
		Center:    lngLatOf(center),
	}
	var points []LngLat
	for _, m := range sequence(markers) {
		points = append(points, lngLatOf(m))
	}

	if c.maps == nil {
		c.logger.Printf("hxview: map %s: %v: no map widget configured", cfg.Container, ErrWidget)
	} else {
		c.scheduler.Defer(func() {
			if err := c.attachMap(cfg, points); err != nil {
				c.logger.Printf("hxview: map %s: %v", cfg.Container, err)
			}
		})
	}

	return Element("div", Attrs{
		"style": mapStyle,
		"id":    id,
	}), nil
}

func (c *Compiler) attachMap(cfg MapConfig, markers []LngLat) error {
	m, err := c.maps.Create(cfg)
	if err != nil {
		return err
	}
	for _, at := range markers {
		if err := m.AddMarker(at); err != nil {
			return err
		}
	}
	return nil
}

// lngLatOf reads {lon, lat} from a map. Missing or non-numeric fields are
// zero.
func lngLatOf(v any) LngLat {
	m := asMap(v)
	lon, _ := toFloat(m["lon"])
	lat, _ := toFloat(m["lat"])
	return LngLat{Lon: lon, Lat: lat}
}
