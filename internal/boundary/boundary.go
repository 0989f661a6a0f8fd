// Package boundary enumerates complex areas from a GeoJSON boundary dataset.
package boundary

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// Region is one named boundary polygon.
type Region struct {
	Name   string
	Bounds *geom.Bounds
}

// Load reads a FeatureCollection and returns one Region per distinct value
// of the name property, sorted by name. Features without the property are
// skipped; polygon parts of the same region are merged into one bounds.
func Load(path, property string) ([]Region, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read boundaries: %w", err)
	}
	regions, err := Parse(data, property)
	if err != nil {
		return nil, fmt.Errorf("parse boundaries %s: %w", path, err)
	}
	return regions, nil
}

// Parse decodes GeoJSON boundary data.
func Parse(data []byte, property string) ([]Region, error) {
	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, err
	}

	byName := make(map[string]*Region)
	for i, f := range fc.Features {
		raw, ok := f.Properties[property]
		if !ok {
			continue
		}
		name, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("feature %d: property %q is %T, want string", i, property, raw)
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		switch f.Geometry.(type) {
		case *geom.Polygon, *geom.MultiPolygon, nil:
		default:
			return nil, fmt.Errorf("feature %d (%s): unsupported geometry %T", i, name, f.Geometry)
		}

		r, seen := byName[name]
		if !seen {
			r = &Region{Name: name}
			byName[name] = r
		}
		if f.Geometry == nil {
			continue
		}
		if r.Bounds == nil {
			r.Bounds = geom.NewBounds(geom.XY)
		}
		r.Bounds.Extend(f.Geometry)
	}

	out := make([]Region, 0, len(byName))
	for _, r := range byName {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Names returns the region names in order.
func Names(regions []Region) []string {
	names := make([]string, len(regions))
	for i, r := range regions {
		names[i] = r.Name
	}
	return names
}

// Extents returns each region's bounding box as [minX, minY, maxX, maxY],
// keyed by name. Regions without geometry are omitted.
func Extents(regions []Region) map[string][]float64 {
	out := make(map[string][]float64, len(regions))
	for _, r := range regions {
		if r.Bounds == nil || r.Bounds.IsEmpty() {
			continue
		}
		b := r.Bounds
		out[r.Name] = []float64{b.Min(0), b.Min(1), b.Max(0), b.Max(1)}
	}
	return out
}
