package tess

import (
	"math"

	"geoview/internal/geom"
	"geoview/internal/path"
)

// LineStringMeshBuilder turns line strings into a constant-width ribbon:
// one quad per segment, no join geometry.
type LineStringMeshBuilder struct {
	width     float64
	positions [][2]float32
	indices   []uint32
}

// NewLineStringMeshBuilder strokes with the given width in world units.
func NewLineStringMeshBuilder(width float64) *LineStringMeshBuilder {
	return &LineStringMeshBuilder{width: width}
}

// AddLineString appends one quad per non-zero-length segment. Lines with
// fewer than two points add nothing.
func (b *LineStringMeshBuilder) AddLineString(ls geom.LineString) {
	hw := b.width / 2
	for coords := range path.Subpaths(path.Line(ls.Coords())) {
		for i := 1; i < len(coords); i++ {
			b.addSegment(coords[i-1], coords[i], hw)
		}
	}
}

func (b *LineStringMeshBuilder) addSegment(p, q geom.Coord, hw float64) {
	dx, dy := q.X-p.X, q.Y-p.Y
	l := math.Hypot(dx, dy)
	if l == 0 || hw <= 0 {
		return
	}
	nx, ny := -dy/l*hw, dx/l*hw
	base := uint32(len(b.positions))
	b.positions = append(b.positions,
		[2]float32{float32(p.X + nx), float32(p.Y + ny)},
		[2]float32{float32(p.X - nx), float32(p.Y - ny)},
		[2]float32{float32(q.X + nx), float32(q.Y + ny)},
		[2]float32{float32(q.X - nx), float32(q.Y - ny)},
	)
	b.indices = append(b.indices, base, base+1, base+2, base+2, base+1, base+3)
}

// Build returns the accumulated mesh.
func (b *LineStringMeshBuilder) Build() Mesh {
	return Mesh{Positions: b.positions, Indices: b.indices}
}
