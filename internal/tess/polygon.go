package tess

import (
	"fmt"

	"geoview/internal/debug"
	"geoview/internal/geom"
	"geoview/internal/path"
)

// PolygonInput is one polygon flattened for Triangulate.
type PolygonInput struct {
	Vertices    []float64 // x0, y0, x1, y1, ...
	HoleIndices []int     // vertex index where each hole starts
}

// FlattenPolygon packs the exterior ring and then every non-empty hole,
// walking the polygon's path commands.
func FlattenPolygon(p geom.Polygon) PolygonInput {
	var b path.Builder
	b.AppendPolygon(p)
	in := PolygonInput{Vertices: make([]float64, 0, 2*p.NumCoords())}
	first := true
	for coords := range path.Subpaths(b.Commands()) {
		if first && len(p.Exterior) == 0 {
			return PolygonInput{} // holes without an exterior
		}
		if !first {
			in.HoleIndices = append(in.HoleIndices, len(in.Vertices)/2)
		}
		first = false
		for _, c := range coords {
			in.Vertices = append(in.Vertices, c.X, c.Y)
		}
	}
	return in
}

// PolygonMeshBuilder accumulates any number of polygons into one shared
// vertex/index buffer so a layer draws in a single call.
type PolygonMeshBuilder struct {
	positions [][2]float32
	indices   []uint32
	polygons  int
	stalled   int
}

func NewPolygonMeshBuilder() *PolygonMeshBuilder { return &PolygonMeshBuilder{} }

// AddPolygon triangulates p and appends it.
func (b *PolygonMeshBuilder) AddPolygon(p geom.Polygon) error {
	return b.AddInput(FlattenPolygon(p))
}

// AddInput triangulates a flattened polygon and appends its vertices and
// offset indices. A stalled triangulation keeps the triangles it produced
// and returns ErrTriangulationStalled.
func (b *PolygonMeshBuilder) AddInput(in PolygonInput) error {
	tris, err := Triangulate(in.Vertices, in.HoleIndices)
	b.polygons++
	if len(tris) > 0 {
		base := uint32(len(b.positions))
		for i := 0; i+1 < len(in.Vertices); i += 2 {
			b.positions = append(b.positions, [2]float32{float32(in.Vertices[i]), float32(in.Vertices[i+1])})
		}
		for _, idx := range tris {
			b.indices = append(b.indices, base+uint32(idx))
		}
	}
	if err != nil {
		b.stalled++
		debug.Logger().Warn("polygon triangulation stalled", "polygon", b.polygons-1,
			"vertices", len(in.Vertices)/2, "triangles", len(tris)/3)
		return fmt.Errorf("polygon %d: %w", b.polygons-1, err)
	}
	return nil
}

// Polygons is the number of polygons added so far, degenerate ones included.
func (b *PolygonMeshBuilder) Polygons() int { return b.polygons }

// Stalled counts polygons whose triangulation stopped early.
func (b *PolygonMeshBuilder) Stalled() int { return b.stalled }

// Build returns the accumulated mesh.
func (b *PolygonMeshBuilder) Build() Mesh {
	return Mesh{Positions: b.positions, Indices: b.indices}
}
