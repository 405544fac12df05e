package geom

import (
	"errors"
	"testing"
)

func TestRectMergeProperties(t *testing.T) {
	a := NewRect(Coord{0, 0}, Coord{2, 1})
	b := NewRect(Coord{-1, 3}, Coord{1, 4})
	c := NewRect(Coord{5, -2}, Coord{6, 0})

	if got, want := a.Merge(b), b.Merge(a); got != want {
		t.Errorf("merge not commutative: %v vs %v", got, want)
	}
	if got, want := a.Merge(b).Merge(c), a.Merge(b.Merge(c)); got != want {
		t.Errorf("merge not associative: %v vs %v", got, want)
	}
	if got := a.Merge(a); got != a {
		t.Errorf("merge(a, a) = %v, want %v", got, a)
	}
	if got := EmptyRect().Merge(a); got != a {
		t.Errorf("merge(empty, a) = %v, want %v", got, a)
	}
	m := a.Merge(c)
	if m.Min() != (Coord{0, -2}) || m.Max() != (Coord{6, 1}) {
		t.Errorf("merge = %v", m)
	}
}

func TestRectContainsCoordInclusive(t *testing.T) {
	r := NewRect(Coord{0, 0}, Coord{10, 5})
	tests := []struct {
		name string
		c    Coord
		want bool
	}{
		{"inside", Coord{5, 2}, true},
		{"corner", Coord{10, 5}, true},
		{"edge", Coord{0, 3}, true},
		{"outside", Coord{10.01, 2}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.ContainsCoord(tt.c); got != tt.want {
				t.Errorf("ContainsCoord(%v) = %v, want %v", tt.c, got, tt.want)
			}
		})
	}
	if EmptyRect().ContainsCoord(Coord{}) {
		t.Error("empty rect contains origin")
	}
}

func TestBoundingRect(t *testing.T) {
	square := Polygon{Exterior: Ring{{0, 0}, {4, 0}, {4, 4}, {0, 4}, {0, 0}}}
	tests := []struct {
		name    string
		g       Geometry
		want    Rect
		wantErr error
	}{
		{"line", LineString{{1, 2}, {3, -1}}, NewRect(Coord{1, -1}, Coord{3, 2}), nil},
		{"polygon", square, NewRect(Coord{0, 0}, Coord{4, 4}), nil},
		{"multi polygon", MultiPolygon{square, {Exterior: Ring{{10, 10}, {11, 10}, {11, 12}}}},
			NewRect(Coord{0, 0}, Coord{11, 12}), nil},
		{"collection skips points", Collection{Point{100, 100}, LineString{{0, 0}, {1, 1}}},
			NewRect(Coord{0, 0}, Coord{1, 1}), nil},
		{"collection skips nested", Collection{Collection{LineString{{50, 50}, {60, 60}}}, LineString{{0, 0}, {1, 1}}},
			NewRect(Coord{0, 0}, Coord{1, 1}), nil},
		{"empty line is degenerate", LineString{}, Rect{}, nil},
		{"empty collection is degenerate", Collection{}, Rect{}, nil},
		{"points only collection", Collection{Point{500, 500}, MultiPoint{{1, 1}}}, Rect{}, ErrUnsupportedGeometryKind},
		{"nested only collection", Collection{Collection{LineString{{0, 0}, {1, 1}}}}, Rect{}, ErrUnsupportedGeometryKind},
		{"point", Point{1, 1}, Rect{}, ErrUnsupportedGeometryKind},
		{"multipoint", MultiPoint{{1, 1}}, Rect{}, ErrUnsupportedGeometryKind},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BoundingRect(tt.g)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("BoundingRect() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("BoundingRect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRingDegenerate(t *testing.T) {
	tests := []struct {
		name string
		r    Ring
		want bool
	}{
		{"empty", Ring{}, true},
		{"one", Ring{{0, 0}}, true},
		{"two repeated", Ring{{0, 0}, {1, 1}, {0, 0}, {1, 1}}, true},
		{"triangle", Ring{{0, 0}, {1, 0}, {0, 1}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Degenerate(); got != tt.want {
				t.Errorf("Degenerate() = %v, want %v", got, tt.want)
			}
		})
	}
}
