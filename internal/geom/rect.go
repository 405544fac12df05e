package geom

import (
	"fmt"

	"github.com/golang/geo/r2"

	"geoview/internal/debug"
)

// Rect is an axis-aligned bounding box. The zero value is the degenerate
// box at the origin; EmptyRect is the identity for Merge.
type Rect struct {
	r r2.Rect
}

// NewRect returns the smallest box containing a and b.
func NewRect(a, b Coord) Rect {
	return Rect{r: r2.RectFromPoints(r2.Point{X: a.X, Y: a.Y}, r2.Point{X: b.X, Y: b.Y})}
}

// EmptyRect contains nothing and merges as a no-op.
func EmptyRect() Rect { return Rect{r: r2.EmptyRect()} }

func (r Rect) IsEmpty() bool { return r.r.IsEmpty() }
func (r Rect) Min() Coord    { return Coord{X: r.r.X.Lo, Y: r.r.Y.Lo} }
func (r Rect) Max() Coord    { return Coord{X: r.r.X.Hi, Y: r.r.Y.Hi} }
func (r Rect) Width() float64 {
	if r.IsEmpty() {
		return 0
	}
	return r.r.X.Length()
}
func (r Rect) Height() float64 {
	if r.IsEmpty() {
		return 0
	}
	return r.r.Y.Length()
}

func (r Rect) Center() Coord {
	c := r.r.Center()
	return Coord{X: c.X, Y: c.Y}
}

// Merge is the elementwise min/max of both boxes.
func (r Rect) Merge(o Rect) Rect { return Rect{r: r.r.Union(o.r)} }

// Extend grows the box to include c.
func (r Rect) Extend(c Coord) Rect { return Rect{r: r.r.AddPoint(r2.Point{X: c.X, Y: c.Y})} }

// ContainsCoord is inclusive of the boundary.
func (r Rect) ContainsCoord(c Coord) bool {
	return r.r.ContainsPoint(r2.Point{X: c.X, Y: c.Y})
}

func (r Rect) String() string {
	if r.IsEmpty() {
		return "[empty]"
	}
	return fmt.Sprintf("[%.5f, %.5f, %.5f, %.5f]", r.r.X.Lo, r.r.Y.Lo, r.r.X.Hi, r.r.Y.Hi)
}

// BoundingRect computes the box of a renderable geometry. Points fail with
// ErrUnsupportedGeometryKind. Inside a collection, unsupported members are
// skipped and logged, and a non-empty collection with no supported member
// fails. A supported geometry with no coordinates yields the degenerate box
// at the origin.
func BoundingRect(g Geometry) (Rect, error) {
	r, err := boundingRect(g, 0)
	if err != nil {
		return Rect{}, err
	}
	if r.IsEmpty() {
		return Rect{}, nil
	}
	return r, nil
}

func boundingRect(g Geometry, depth int) (Rect, error) {
	r := EmptyRect()
	switch g := g.(type) {
	case LineString:
		for _, c := range g {
			r = r.Extend(c)
		}
	case MultiLineString:
		for _, ls := range g {
			for _, c := range ls {
				r = r.Extend(c)
			}
		}
	case Polygon:
		for _, c := range g.Exterior {
			r = r.Extend(c)
		}
	case MultiPolygon:
		for _, p := range g {
			for _, c := range p.Exterior {
				r = r.Extend(c)
			}
		}
	case Collection:
		if depth > 0 {
			return Rect{}, ErrNestedCollection
		}
		supported := 0
		for i, m := range g {
			mr, err := boundingRect(m, depth+1)
			if err != nil {
				debug.Logger().Warn("skipping geometry", "index", i, "kind", kindName(m), "err", err)
				continue
			}
			supported++
			r = r.Merge(mr)
		}
		if len(g) > 0 && supported == 0 {
			return Rect{}, fmt.Errorf("%w: collection has no line or polygon members", ErrUnsupportedGeometryKind)
		}
	default:
		return Rect{}, fmt.Errorf("%w: %s", ErrUnsupportedGeometryKind, kindName(g))
	}
	return r, nil
}

func kindName(g Geometry) string {
	if g == nil {
		return "nil"
	}
	return g.Kind().String()
}
