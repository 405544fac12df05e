package geom

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	geojson "github.com/paulmach/go.geojson"

	"geoview/internal/debug"
)

// Document is a decoded GeoJSON input: one collection member per feature
// geometry, with that feature's properties at the same index.
type Document struct {
	Collection Collection
	Properties []map[string]any
}

func (d *Document) add(g Geometry, props map[string]any) {
	if props == nil {
		props = map[string]any{}
	}
	d.Collection = append(d.Collection, g)
	d.Properties = append(d.Properties, props)
}

// DecodeGeoJSON reads either a single GeoJSON object (FeatureCollection,
// Feature or bare geometry) or a stream of concatenated features.
func DecodeGeoJSON(r io.Reader) (Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Document{}, err
	}
	var doc Document
	dec := json.NewDecoder(bytes.NewReader(data))
	for n := 0; ; n++ {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return Document{}, fmt.Errorf("geojson value %d: %w", n, err)
		}
		if err := doc.decodeValue(raw); err != nil {
			return Document{}, fmt.Errorf("geojson value %d: %w", n, err)
		}
	}
	if len(doc.Collection) == 0 {
		return Document{}, errors.New("no geometries found")
	}
	return doc, nil
}

func (d *Document) decodeValue(raw json.RawMessage) error {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return err
	}
	switch probe.Type {
	case "":
		return errors.New("invalid geojson: missing type")
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(raw)
		if err != nil {
			return err
		}
		for _, f := range fc.Features {
			d.addFeature(f)
		}
	case "Feature":
		f, err := geojson.UnmarshalFeature(raw)
		if err != nil {
			return err
		}
		d.addFeature(f)
	default:
		g, err := geojson.UnmarshalGeometry(raw)
		if err != nil {
			return err
		}
		d.addFeature(&geojson.Feature{Geometry: g})
	}
	return nil
}

// addFeature flattens a feature's GeometryCollection one level so the
// document stays a single-level collection.
func (d *Document) addFeature(f *geojson.Feature) {
	if f == nil || f.Geometry == nil {
		return
	}
	if f.Geometry.Type == geojson.GeometryCollection {
		for _, m := range f.Geometry.Geometries {
			d.addConverted(m, f.Properties)
		}
		return
	}
	d.addConverted(f.Geometry, f.Properties)
}

func (d *Document) addConverted(g *geojson.Geometry, props map[string]any) {
	conv, err := FromGeoJSON(g)
	if err != nil {
		debug.Logger().Warn("skipping feature geometry", "err", err)
		return
	}
	d.add(conv, props)
}

// FromGeoJSON converts one decoded GeoJSON geometry.
func FromGeoJSON(g *geojson.Geometry) (Geometry, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: null geometry", ErrUnsupportedGeometryKind)
	}
	switch g.Type {
	case geojson.GeometryPoint:
		return Point(coord(g.Point)), nil
	case geojson.GeometryMultiPoint:
		return MultiPoint(coords(g.MultiPoint)), nil
	case geojson.GeometryLineString:
		return LineString(coords(g.LineString)), nil
	case geojson.GeometryMultiLineString:
		out := make(MultiLineString, 0, len(g.MultiLineString))
		for _, ls := range g.MultiLineString {
			out = append(out, coords(ls))
		}
		return out, nil
	case geojson.GeometryPolygon:
		return polygon(g.Polygon), nil
	case geojson.GeometryMultiPolygon:
		out := make(MultiPolygon, 0, len(g.MultiPolygon))
		for _, p := range g.MultiPolygon {
			out = append(out, polygon(p))
		}
		return out, nil
	case geojson.GeometryCollection:
		out := make(Collection, 0, len(g.Geometries))
		for i, m := range g.Geometries {
			if m != nil && m.Type == geojson.GeometryCollection {
				debug.Logger().Warn("skipping geometry", "index", i, "err", ErrNestedCollection)
				continue
			}
			conv, err := FromGeoJSON(m)
			if err != nil {
				debug.Logger().Warn("skipping geometry", "index", i, "err", err)
				continue
			}
			out = append(out, conv)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedGeometryKind, g.Type)
}

func coord(p []float64) Coord {
	if len(p) < 2 {
		return Coord{}
	}
	return Coord{X: p[0], Y: p[1]}
}

func coords(ps [][]float64) []Coord {
	out := make([]Coord, 0, len(ps))
	for _, p := range ps {
		if len(p) >= 2 {
			out = append(out, coord(p))
		}
	}
	return out
}

func polygon(rings [][][]float64) Polygon {
	var p Polygon
	for i, r := range rings {
		if i == 0 {
			p.Exterior = coords(r)
			continue
		}
		p.Interiors = append(p.Interiors, coords(r))
	}
	return p
}
