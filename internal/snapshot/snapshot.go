// Package snapshot is a headless render sink: it keeps the spawned layer
// meshes and rasterizes them to an image with gg.
package snapshot

import (
	"io"

	"github.com/gogpu/gg"

	"geoview/internal/camera"
	"geoview/internal/debug"
	"geoview/internal/geom"
	"geoview/internal/layer"
	"geoview/internal/path"
	"geoview/internal/tess"
	"geoview/internal/viewer"
)

type entry struct {
	handle  layer.Handle
	color   layer.RGB
	fill    tess.Mesh
	stroke  tess.Mesh
	outline []path.Command
}

// Renderer implements viewer.Sink.
type Renderer struct {
	Width, Height int
	Background    gg.RGBA
	OutlineWidth  float64 // pixels; 0 disables outlines

	layers []entry
}

var _ viewer.Sink = (*Renderer)(nil)

func New(width, height int) *Renderer {
	return &Renderer{Width: width, Height: height, Background: gg.White, OutlineWidth: 1}
}

func (r *Renderer) Spawn(l layer.Layer, m viewer.Meshes) {
	var b path.Builder
	b.AppendGeometry(l.Geometry)
	r.layers = append(r.layers, entry{
		handle:  l.Handle,
		color:   l.Color,
		fill:    m.Fill,
		stroke:  m.Stroke,
		outline: b.Commands(),
	})
}

func (r *Renderer) Recolor(h layer.Handle, c layer.RGB) {
	for i := range r.layers {
		if r.layers[i].handle == h {
			r.layers[i].color = c
		}
	}
}

func (r *Renderer) Clear() { r.layers = nil }

// Len is the number of spawned layers.
func (r *Renderer) Len() int { return len(r.layers) }

// Draw rasterizes every layer in spawn order as seen through cam.
func (r *Renderer) Draw(cam *camera.Camera) *gg.Context {
	t := debug.Start("snapshot %dx%d", r.Width, r.Height)
	defer t.Finish()

	dc := gg.NewContext(r.Width, r.Height)
	dc.ClearWithColor(r.Background)
	for _, e := range r.layers {
		dc.SetRGB(e.color.Floats())
		r.fillMesh(dc, cam, e.fill)
		r.fillMesh(dc, cam, e.stroke)
		if r.OutlineWidth > 0 && len(e.outline) > 0 {
			r.tracePath(dc, cam, e.outline)
			dc.SetLineWidth(r.OutlineWidth)
			if err := dc.Stroke(); err != nil {
				debug.Logger().Warn("outline stroke failed", "layer", e.handle, "err", err)
			}
		}
	}
	return dc
}

func (r *Renderer) fillMesh(dc *gg.Context, cam *camera.Camera, m tess.Mesh) {
	if m.Empty() {
		return
	}
	pt := func(p [2]float32) (float64, float64) {
		return cam.WorldToScreen(geom.Coord{X: float64(p[0]), Y: float64(p[1])}, r.Width, r.Height)
	}
	for i := range m.Triangles() {
		a, b, c := m.Triangle(i)
		dc.MoveTo(pt(a))
		dc.LineTo(pt(b))
		dc.LineTo(pt(c))
		dc.ClosePath()
	}
	if err := dc.Fill(); err != nil {
		debug.Logger().Warn("mesh fill failed", "err", err)
	}
}

func (r *Renderer) tracePath(dc *gg.Context, cam *camera.Camera, cmds []path.Command) {
	for _, c := range cmds {
		x, y := cam.WorldToScreen(geom.Coord{X: c.X, Y: c.Y}, r.Width, r.Height)
		switch c.Op {
		case path.MoveTo:
			dc.MoveTo(x, y)
		case path.LineTo:
			dc.LineTo(x, y)
		case path.Close:
			dc.ClosePath()
		}
	}
}

// WritePNG draws and encodes the result as PNG.
func (r *Renderer) WritePNG(w io.Writer, cam *camera.Camera) error {
	dc := r.Draw(cam)
	defer dc.Close()
	return dc.EncodePNG(w)
}

// SavePNG draws and writes the result to a PNG file.
func (r *Renderer) SavePNG(name string, cam *camera.Camera) error {
	dc := r.Draw(cam)
	defer dc.Close()
	return dc.SavePNG(name)
}
