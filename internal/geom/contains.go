package geom

import "math"

// ContainsCoord reports whether c lies in g. Polygons use the even-odd rule
// over all rings and count their boundary (exterior and hole edges) as
// contained. Lines contain the coordinates on their segments.
func ContainsCoord(g Geometry, c Coord) bool {
	switch g := g.(type) {
	case Point:
		return Coord(g) == c
	case MultiPoint:
		for _, p := range g {
			if p == c {
				return true
			}
		}
	case LineString:
		return lineContains(g, c)
	case MultiLineString:
		for _, ls := range g {
			if lineContains(ls, c) {
				return true
			}
		}
	case Polygon:
		return polygonContains(g, c)
	case MultiPolygon:
		for _, p := range g {
			if polygonContains(p, c) {
				return true
			}
		}
	case Collection:
		for _, m := range g {
			if _, nested := m.(Collection); nested {
				continue
			}
			if ContainsCoord(m, c) {
				return true
			}
		}
	}
	return false
}

func lineContains(ls LineString, c Coord) bool {
	if len(ls) == 1 {
		return ls[0] == c
	}
	for i := 1; i < len(ls); i++ {
		if onSegment(ls[i-1], ls[i], c) {
			return true
		}
	}
	return false
}

func polygonContains(p Polygon, c Coord) bool {
	if p.Exterior.Degenerate() {
		return false
	}
	inside := false
	for _, r := range append([]Ring{p.Exterior}, p.Interiors...) {
		if len(r) < 2 {
			continue
		}
		for i, j := 0, len(r)-1; i < len(r); j, i = i, i+1 {
			a, b := r[j], r[i]
			if onSegment(a, b, c) {
				return true
			}
			if (a.Y > c.Y) != (b.Y > c.Y) && c.X < (b.X-a.X)*(c.Y-a.Y)/(b.Y-a.Y)+a.X {
				inside = !inside
			}
		}
	}
	return inside
}

func onSegment(a, b, c Coord) bool {
	if c.X < math.Min(a.X, b.X) || c.X > math.Max(a.X, b.X) ||
		c.Y < math.Min(a.Y, b.Y) || c.Y > math.Max(a.Y, b.Y) {
		return false
	}
	dx, dy := b.X-a.X, b.Y-a.Y
	cross := dx*(c.Y-a.Y) - dy*(c.X-a.X)
	return math.Abs(cross) <= 1e-9*math.Max(1, dx*dx+dy*dy)
}
