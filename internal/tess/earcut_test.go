package tess

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"geoview/internal/geom"
)

func ringCoords(r geom.Ring) []float64 {
	out := make([]float64, 0, 2*len(r))
	for _, c := range r {
		out = append(out, c.X, c.Y)
	}
	return out
}

func shoelace(r geom.Ring) float64 {
	var sum float64
	for i, j := 0, len(r)-1; i < len(r); j, i = i, i+1 {
		sum += r[j].X*r[i].Y - r[i].X*r[j].Y
	}
	return math.Abs(sum) / 2
}

func trianglesArea(data []float64, tris []int) float64 {
	var sum float64
	for t := 0; t+2 < len(tris); t += 3 {
		ax, ay := data[2*tris[t]], data[2*tris[t]+1]
		bx, by := data[2*tris[t+1]], data[2*tris[t+1]+1]
		cx, cy := data[2*tris[t+2]], data[2*tris[t+2]+1]
		sum += math.Abs((bx-ax)*(cy-ay)-(cx-ax)*(by-ay)) / 2
	}
	return sum
}

func star(n int, r1, r2, ox, oy float64) geom.Ring {
	r := make(geom.Ring, 0, 2*n)
	for k := range 2 * n {
		rad := r1
		if k%2 == 1 {
			rad = r2
		}
		a := math.Pi * float64(k) / float64(n)
		r = append(r, geom.Coord{X: ox + rad*math.Cos(a), Y: oy + rad*math.Sin(a)})
	}
	return r
}

func TestTriangulateSquareWithHole(t *testing.T) {
	p := geom.Polygon{
		Exterior:  geom.Ring{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}, {X: 0, Y: 0}},
		Interiors: []geom.Ring{{{X: 3, Y: 3}, {X: 7, Y: 3}, {X: 7, Y: 7}, {X: 3, Y: 7}, {X: 3, Y: 3}}},
	}
	in := FlattenPolygon(p)
	if got, want := in.HoleIndices, []int{5}; len(got) != 1 || got[0] != want[0] {
		t.Fatalf("HoleIndices = %v, want %v", got, want)
	}
	tris, err := Triangulate(in.Vertices, in.HoleIndices)
	if err != nil {
		t.Fatal(err)
	}
	if got := len(tris) / 3; got != 8 {
		t.Errorf("triangles = %d, want 8", got)
	}
	if got, want := trianglesArea(in.Vertices, tris), 100.0-16.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("area = %v, want %v", got, want)
	}
}

func TestTriangulateArea(t *testing.T) {
	tests := []struct {
		name  string
		outer geom.Ring
		holes []geom.Ring
		want  float64
	}{
		{"triangle", geom.Ring{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 0, Y: 3}}, nil, 6},
		{"clockwise square", geom.Ring{{X: 0, Y: 0}, {X: 0, Y: 2}, {X: 2, Y: 2}, {X: 2, Y: 0}}, nil, 4},
		{"concave L", geom.Ring{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 4}, {X: 0, Y: 4}}, nil, 7},
		{"star", star(9, 10, 4, 0, 0), nil, shoelace(star(9, 10, 4, 0, 0))},
		{
			"two holes",
			geom.Ring{{X: 0, Y: 0}, {X: 20, Y: 0}, {X: 20, Y: 10}, {X: 0, Y: 10}},
			[]geom.Ring{
				{{X: 2, Y: 2}, {X: 6, Y: 2}, {X: 6, Y: 6}, {X: 2, Y: 6}},
				{{X: 12, Y: 2}, {X: 18, Y: 2}, {X: 15, Y: 8}},
			},
			200 - 16 - 18,
		},
		{
			"star with star hole",
			star(12, 50, 30, 0, 0),
			[]geom.Ring{star(5, 10, 5, 0, 0)},
			shoelace(star(12, 50, 30, 0, 0)) - shoelace(star(5, 10, 5, 0, 0)),
		},
		{
			"hole outside is ignored",
			geom.Ring{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}},
			[]geom.Ring{{{X: 20, Y: 20}, {X: 21, Y: 20}, {X: 21, Y: 21}}},
			100,
		},
		{
			"degenerate hole is ignored",
			geom.Ring{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}},
			[]geom.Ring{{{X: 2, Y: 2}, {X: 3, Y: 3}}},
			100,
		},
		{
			"duplicate points",
			geom.Ring{{X: 0, Y: 0}, {X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}, {X: 0, Y: 1}},
			nil, 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := FlattenPolygon(geom.Polygon{Exterior: tt.outer, Interiors: tt.holes})
			tris, err := Triangulate(in.Vertices, in.HoleIndices)
			if err != nil {
				t.Fatal(err)
			}
			if len(tris)%3 != 0 {
				t.Fatalf("len(indices) = %d, not a multiple of 3", len(tris))
			}
			if got := trianglesArea(in.Vertices, tris); math.Abs(got-tt.want) > 1e-9*math.Max(1, tt.want) {
				t.Errorf("area = %v, want %v", got, tt.want)
			}
			n := len(in.Vertices) / 2
			if bound := n + 2*len(tt.holes) - 2; len(tris)/3 > bound {
				t.Errorf("triangles = %d, want at most %d", len(tris)/3, bound)
			}
			for _, idx := range tris {
				if idx < 0 || idx >= n {
					t.Fatalf("index %d out of range [0, %d)", idx, n)
				}
			}
		})
	}
}

func TestTriangulateDegenerate(t *testing.T) {
	tests := []struct {
		name  string
		data  []float64
		holes []int
	}{
		{"empty", nil, nil},
		{"one point", []float64{1, 1}, nil},
		{"two points", []float64{0, 0, 1, 1}, nil},
		{"closed two points", []float64{0, 0, 1, 1, 0, 0}, nil},
		{"collinear", []float64{0, 0, 1, 1, 2, 2, 3, 3}, nil},
		{"all equal", []float64{5, 5, 5, 5, 5, 5, 5, 5}, nil},
		{"odd length", []float64{0, 0, 1}, nil},
		{"bad hole indices", []float64{0, 0, 1, 1}, []int{7, -1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tris, err := Triangulate(tt.data, tt.holes)
			if err != nil {
				t.Fatalf("Triangulate() error = %v", err)
			}
			if len(tris) != 0 {
				t.Errorf("Triangulate() = %v, want no triangles", tris)
			}
		})
	}
}

func TestTriangulateSelfIntersectingTerminates(t *testing.T) {
	inputs := [][]float64{
		{0, 0, 2, 2, 2, 0, 0, 2},                   // bow tie
		{0, 0, 4, 0, 0, 4, 4, 4, 2, -2, 2, 6},      // crossing zig-zag
		{0, 0, 1, 0, 1, 1, 0, 1, 0, 0, 1, 0, 1, 1}, // doubled square
	}
	for i, data := range inputs {
		tris, err := Triangulate(data, nil)
		if err != nil && !errors.Is(err, ErrTriangulationStalled) {
			t.Errorf("input %d: unexpected error %v", i, err)
		}
		if len(tris)%3 != 0 {
			t.Errorf("input %d: len(indices) = %d", i, len(tris))
		}
	}
}

// randomHoledPolygon builds a star-shaped exterior around the origin with
// at least 3 disjoint holes well inside it. With snap set every coordinate
// is rounded to an integer, which produces many shared x and y values.
func randomHoledPolygon(rng *rand.Rand, snap bool) geom.Polygon {
	pt := func(x, y float64) geom.Coord {
		if snap {
			x, y = math.Round(x), math.Round(y)
		}
		return geom.Coord{X: x, Y: y}
	}
	n := 12 + rng.IntN(29)
	var p geom.Polygon
	for k := range n {
		a := 2 * math.Pi * (float64(k) + rng.Float64()*0.6 - 0.3) / float64(n)
		r := 60 + rng.Float64()*40
		p.Exterior = append(p.Exterior, pt(r*math.Cos(a), r*math.Sin(a)))
	}
	type disk struct{ x, y, r float64 }
	var disks []disk
	want := 3 + rng.IntN(4)
	for try := 0; len(p.Interiors) < want && try < 300; try++ {
		cr, ca := rng.Float64()*38, rng.Float64()*2*math.Pi
		d := disk{cr * math.Cos(ca), cr * math.Sin(ca), 3 + rng.Float64()*7}
		overlaps := false
		for _, o := range disks {
			if math.Hypot(d.x-o.x, d.y-o.y) < d.r+o.r+3 {
				overlaps = true
				break
			}
		}
		if overlaps {
			continue
		}
		m := 3 + rng.IntN(6)
		hole := make(geom.Ring, 0, m)
		seen := map[geom.Coord]bool{}
		for k := range m {
			a := 2 * math.Pi * (float64(k) + rng.Float64()*0.4 - 0.2) / float64(m)
			c := pt(d.x+d.r*math.Cos(a), d.y+d.r*math.Sin(a))
			seen[c] = true
			hole = append(hole, c)
		}
		if len(seen) != m || shoelace(hole) < 1 {
			continue
		}
		disks = append(disks, d)
		p.Interiors = append(p.Interiors, hole)
	}
	return p
}

func TestTriangulateManyHoles(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for i := range 2000 {
		p := randomHoledPolygon(rng, i%2 == 1)
		want := shoelace(p.Exterior)
		for _, h := range p.Interiors {
			want -= shoelace(h)
		}
		in := FlattenPolygon(p)
		tris, err := Triangulate(in.Vertices, in.HoleIndices)
		if err != nil {
			t.Fatalf("polygon %d: %v", i, err)
		}
		if got := trianglesArea(in.Vertices, tris); math.Abs(got-want) > 1e-9*want {
			t.Fatalf("polygon %d (%d holes): area = %v, want %v\nexterior: %v\nholes: %v",
				i, len(p.Interiors), got, want, p.Exterior, p.Interiors)
		}
		n := len(in.Vertices) / 2
		if bound := n + 2*len(p.Interiors) - 2; len(tris)/3 > bound {
			t.Errorf("polygon %d: triangles = %d, want at most %d", i, len(tris)/3, bound)
		}
	}
}
