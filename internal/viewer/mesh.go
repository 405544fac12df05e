package viewer

import (
	"errors"

	"geoview/internal/debug"
	"geoview/internal/geom"
	"geoview/internal/tess"
)

// Meshes is what a layer hands to the sink: at most one fill mesh for its
// polygons and one stroke mesh for its lines. A zero Mesh means "none".
type Meshes struct {
	Fill    tess.Mesh
	Stroke  tess.Mesh
	Stalled int // polygons whose triangulation stopped early
	Skipped int // members of an unrenderable kind
}

// BuildMeshes tessellates every renderable member of g. Points and nested
// collections are skipped and logged.
func BuildMeshes(g geom.Geometry, strokeWidth float64) Meshes {
	t := debug.Start("triangulating and building mesh")
	defer t.Finish()

	polys := tess.NewPolygonMeshBuilder()
	lines := tess.NewLineStringMeshBuilder(strokeWidth)
	var m Meshes
	addPolygon := func(p geom.Polygon) {
		if err := polys.AddPolygon(p); errors.Is(err, tess.ErrTriangulationStalled) {
			m.Stalled++
		}
	}
	var walk func(g geom.Geometry, depth int)
	walk = func(g geom.Geometry, depth int) {
		switch g := g.(type) {
		case geom.LineString:
			lines.AddLineString(g)
		case geom.MultiLineString:
			for _, ls := range g {
				lines.AddLineString(ls)
			}
		case geom.Polygon:
			addPolygon(g)
		case geom.MultiPolygon:
			for _, p := range g {
				addPolygon(p)
			}
		case geom.Collection:
			if depth > 0 {
				m.Skipped++
				debug.Logger().Warn("skipping nested collection", "members", len(g))
				return
			}
			for _, member := range g {
				walk(member, depth+1)
			}
		default:
			m.Skipped++
			kind := "nil"
			if g != nil {
				kind = g.Kind().String()
			}
			debug.Logger().Warn("encountered unrenderable geometry type", "kind", kind)
		}
	}
	walk(g, 0)
	m.Fill = polys.Build()
	m.Stroke = lines.Build()
	return m
}

// strokeWidthFor derives a line width from a layer's extent when none is
// configured, so lines stay visible after the camera fits the layer.
func strokeWidthFor(configured float64, r geom.Rect) float64 {
	if configured > 0 {
		return configured
	}
	if s := max(r.Width(), r.Height()) / 500; s > 0 {
		return s
	}
	return 1
}
