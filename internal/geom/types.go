package geom

import (
	"errors"
	"fmt"
	"iter"
	"slices"
)

var (
	// ErrUnsupportedGeometryKind is returned for kinds the viewer cannot render,
	// such as bare points.
	ErrUnsupportedGeometryKind = errors.New("unsupported geometry kind")
	// ErrNestedCollection is returned for a collection found inside a collection.
	ErrNestedCollection = errors.New("nested geometry collection")
)

// Coord is an (x, y) position in the CRS of the geometry that holds it.
type Coord struct {
	X float64
	Y float64
}

// Kind tags the variants of Geometry.
type Kind int

const (
	KindPoint Kind = iota
	KindMultiPoint
	KindLineString
	KindMultiLineString
	KindPolygon
	KindMultiPolygon
	KindCollection
)

func (k Kind) String() string {
	switch k {
	case KindPoint:
		return "Point"
	case KindMultiPoint:
		return "MultiPoint"
	case KindLineString:
		return "LineString"
	case KindMultiLineString:
		return "MultiLineString"
	case KindPolygon:
		return "Polygon"
	case KindMultiPolygon:
		return "MultiPolygon"
	case KindCollection:
		return "GeometryCollection"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Geometry is a closed sum type: the only implementations are the types in
// this file. Consumers switch on the concrete type and keep a default arm.
type Geometry interface {
	Kind() Kind
	isGeometry()
}

type (
	Point           Coord
	MultiPoint      []Coord
	LineString      []Coord
	MultiLineString []LineString
	MultiPolygon    []Polygon
	Collection      []Geometry
)

// Ring bounds a polygon or one of its holes. Closure is implied: the last
// coordinate may or may not repeat the first.
type Ring []Coord

// Polygon is an exterior ring plus zero or more holes.
type Polygon struct {
	Exterior  Ring
	Interiors []Ring
}

func (Point) Kind() Kind           { return KindPoint }
func (MultiPoint) Kind() Kind      { return KindMultiPoint }
func (LineString) Kind() Kind      { return KindLineString }
func (MultiLineString) Kind() Kind { return KindMultiLineString }
func (Polygon) Kind() Kind         { return KindPolygon }
func (MultiPolygon) Kind() Kind    { return KindMultiPolygon }
func (Collection) Kind() Kind      { return KindCollection }

func (Point) isGeometry()           {}
func (MultiPoint) isGeometry()      {}
func (LineString) isGeometry()      {}
func (MultiLineString) isGeometry() {}
func (Polygon) isGeometry()         {}
func (MultiPolygon) isGeometry()    {}
func (Collection) isGeometry()      {}

// Coords yields the ring's coordinates in order.
func (r Ring) Coords() iter.Seq[Coord] { return slices.Values(r) }

// Coords yields the line's coordinates in order.
func (ls LineString) Coords() iter.Seq[Coord] { return slices.Values(ls) }

// Degenerate reports whether the ring has fewer than 3 distinct points.
func (r Ring) Degenerate() bool {
	var seen []Coord
	for _, c := range r {
		if !slices.Contains(seen, c) {
			seen = append(seen, c)
			if len(seen) == 3 {
				return false
			}
		}
	}
	return true
}

// NumCoords counts every coordinate of the exterior and the holes.
func (p Polygon) NumCoords() int {
	n := len(p.Exterior)
	for _, r := range p.Interiors {
		n += len(r)
	}
	return n
}
