package geom

// MapCoords returns a copy of g with fn applied to every coordinate. The
// first error aborts the walk.
func MapCoords(g Geometry, fn func(Coord) (Coord, error)) (Geometry, error) {
	mapSlice := func(cs []Coord) ([]Coord, error) {
		out := make([]Coord, len(cs))
		for i, c := range cs {
			m, err := fn(c)
			if err != nil {
				return nil, err
			}
			out[i] = m
		}
		return out, nil
	}
	mapPolygon := func(p Polygon) (Polygon, error) {
		ext, err := mapSlice(p.Exterior)
		if err != nil {
			return Polygon{}, err
		}
		out := Polygon{Exterior: ext}
		for _, r := range p.Interiors {
			hole, err := mapSlice(r)
			if err != nil {
				return Polygon{}, err
			}
			out.Interiors = append(out.Interiors, hole)
		}
		return out, nil
	}

	switch g := g.(type) {
	case Point:
		c, err := fn(Coord(g))
		return Point(c), err
	case MultiPoint:
		cs, err := mapSlice(g)
		return MultiPoint(cs), err
	case LineString:
		cs, err := mapSlice(g)
		return LineString(cs), err
	case MultiLineString:
		out := make(MultiLineString, 0, len(g))
		for _, ls := range g {
			cs, err := mapSlice(ls)
			if err != nil {
				return nil, err
			}
			out = append(out, cs)
		}
		return out, nil
	case Polygon:
		return mapPolygon(g)
	case MultiPolygon:
		out := make(MultiPolygon, 0, len(g))
		for _, p := range g {
			mp, err := mapPolygon(p)
			if err != nil {
				return nil, err
			}
			out = append(out, mp)
		}
		return out, nil
	case Collection:
		out := make(Collection, 0, len(g))
		for _, m := range g {
			mm, err := MapCoords(m, fn)
			if err != nil {
				return nil, err
			}
			out = append(out, mm)
		}
		return out, nil
	}
	return nil, ErrUnsupportedGeometryKind
}
