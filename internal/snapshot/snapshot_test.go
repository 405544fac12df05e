package snapshot

import (
	"bytes"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"geoview/internal/camera"
	"geoview/internal/geom"
	"geoview/internal/layer"
	"geoview/internal/viewer"
)

func square(x0, y0, x1, y1 float64) geom.Ring {
	return geom.Ring{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
}

func near(a, b color.Color) bool {
	ar, ag, ab, _ := a.RGBA()
	br, bg, bb, _ := b.RGBA()
	d := func(x, y uint32) bool {
		x, y = x>>8, y>>8
		if x > y {
			return x-y <= 3
		}
		return y-x <= 3
	}
	return d(ar, br) && d(ag, bg) && d(ab, bb)
}

// render loads g through a viewer so the renderer sees real meshes and the
// camera is fitted the way the frame loop fits it.
func render(t *testing.T, g geom.Collection) (*Renderer, *viewer.Viewer) {
	t.Helper()
	r := New(100, 100)
	cfg := viewer.DefaultConfig()
	cfg.TargetCRS = cfg.SourceCRS
	cfg.Camera.ReferenceWidth = 100
	v, err := viewer.New(cfg, r)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(v.Close)
	if _, err := v.Load(g, "test", nil); err != nil {
		t.Fatal(err)
	}
	v.Frame()
	return r, v
}

func TestDrawFillsPolygonMinusHole(t *testing.T) {
	holed := geom.Polygon{Exterior: square(0, 0, 10, 10), Interiors: []geom.Ring{square(3, 3, 7, 7)}}
	r, v := render(t, geom.Collection{holed})
	if r.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", r.Len())
	}
	l := v.Layers().Layers()[0]
	fill := color.RGBA{R: l.Color.R, G: l.Color.G, B: l.Color.B, A: 255}

	img := r.Draw(v.Camera()).Image()
	tests := []struct {
		name string
		x, y int
		want color.Color
	}{
		{"ring left", 15, 50, fill},
		{"ring top", 50, 10, fill},
		{"hole", 50, 50, color.White},
	}
	for _, tt := range tests {
		if got := img.At(tt.x, tt.y); !near(got, tt.want) {
			t.Errorf("%s: pixel (%d,%d) = %v, want %v", tt.name, tt.x, tt.y, got, tt.want)
		}
	}
}

func TestRecolorAndClear(t *testing.T) {
	r, v := render(t, geom.Collection{geom.Polygon{Exterior: square(0, 0, 10, 10)}})
	h := v.Layers().Layers()[0].Handle

	r.Recolor(h, layer.RGB{R: 255})
	if got := r.Draw(v.Camera()).Image().At(50, 50); !near(got, color.RGBA{R: 255, A: 255}) {
		t.Errorf("recolored pixel = %v, want red", got)
	}

	r.Clear()
	if r.Len() != 0 {
		t.Errorf("Len() after Clear = %d", r.Len())
	}
	if got := r.Draw(v.Camera()).Image().At(50, 50); !near(got, color.White) {
		t.Errorf("cleared pixel = %v, want background", got)
	}
}

func TestWritePNG(t *testing.T) {
	r, v := render(t, geom.Collection{geom.LineString{{X: 0, Y: 0}, {X: 10, Y: 10}}})
	var buf bytes.Buffer
	if err := r.WritePNG(&buf, v.Camera()); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 100 {
		t.Errorf("bounds = %v, want 100x100", b)
	}

	name := filepath.Join(t.TempDir(), "out.png")
	if err := r.SavePNG(name, camera.New(camera.DefaultConfig())); err != nil {
		t.Fatal(err)
	}
}
