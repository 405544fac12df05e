package tess

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"geoview/internal/geom"
)

func TestPolygonMeshBuilderSharesBuffer(t *testing.T) {
	b := NewPolygonMeshBuilder()
	square := geom.Polygon{Exterior: geom.Ring{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2}}}
	tri := geom.Polygon{Exterior: geom.Ring{{X: 10, Y: 10}, {X: 13, Y: 10}, {X: 10, Y: 12}}}
	for _, p := range []geom.Polygon{square, {Exterior: geom.Ring{{X: 1, Y: 1}}}, tri} {
		if err := b.AddPolygon(p); err != nil {
			t.Fatal(err)
		}
	}
	m := b.Build()
	if b.Polygons() != 3 {
		t.Errorf("Polygons() = %d, want 3", b.Polygons())
	}
	if got := len(m.Positions); got != 7 {
		t.Errorf("len(Positions) = %d, want 7", got)
	}
	if got := m.Triangles(); got != 3 {
		t.Errorf("Triangles() = %d, want 3", got)
	}
	for _, idx := range m.Indices[6:] {
		if idx < 4 {
			t.Errorf("second polygon index %d not offset past the first polygon", idx)
		}
	}
	if got := m.Area(); math.Abs(got-7) > 1e-6 {
		t.Errorf("Area() = %v, want 7", got)
	}
}

func TestLineStringMeshBuilder(t *testing.T) {
	b := NewLineStringMeshBuilder(2)
	b.AddLineString(geom.LineString{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 5}})
	m := b.Build()
	if got := m.Triangles(); got != 4 {
		t.Fatalf("Triangles() = %d, want 4 (zero-length segment skipped)", got)
	}
	want := [][2]float32{{0, 1}, {0, -1}, {10, 1}, {10, -1}}
	if diff := cmp.Diff(want, m.Positions[:4]); diff != "" {
		t.Errorf("first quad mismatch (-want +got):\n%s", diff)
	}
	if got := m.Area(); math.Abs(got-2*15) > 1e-4 {
		t.Errorf("Area() = %v, want 30", got)
	}
}

func TestLineStringMeshBuilderDegenerate(t *testing.T) {
	tests := []struct {
		name  string
		width float64
		ls    geom.LineString
	}{
		{"empty", 1, nil},
		{"one point", 1, geom.LineString{{X: 1, Y: 1}}},
		{"repeated point", 1, geom.LineString{{X: 1, Y: 1}, {X: 1, Y: 1}}},
		{"zero width", 0, geom.LineString{{X: 0, Y: 0}, {X: 1, Y: 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewLineStringMeshBuilder(tt.width)
			b.AddLineString(tt.ls)
			if m := b.Build(); !m.Empty() || len(m.Positions) != 0 {
				t.Errorf("Build() = %+v, want empty mesh", m)
			}
		})
	}
}
