package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"geoview/internal/camera"
	"geoview/internal/geom"
	"geoview/internal/layer"
	"geoview/internal/path"
	"geoview/internal/tess"
	"geoview/internal/viewer"
)

type sceneLayer struct {
	handle  layer.Handle
	name    string
	color   layer.RGB
	fill    tess.Mesh
	stroke  tess.Mesh
	outline []path.Command
}

type sceneKey struct {
	offset       camera.Offset
	scale        float32
	w, h         int
	version      int
	markX, markY int
	fill, edges  bool
}

// Scene is the terminal render sink. It keeps what the viewer spawned and
// rasterizes it into colored braille on demand, caching the last frame.
type Scene struct {
	layers  []sceneLayer
	version int

	showFill  bool
	showEdges bool

	cacheKey sceneKey
	cache    string
}

var _ viewer.Sink = (*Scene)(nil)

func NewScene() *Scene { return &Scene{showFill: true, showEdges: true, version: 1} }

func (s *Scene) Spawn(l layer.Layer, m viewer.Meshes) {
	var b path.Builder
	b.AppendGeometry(l.Geometry)
	s.layers = append(s.layers, sceneLayer{
		handle:  l.Handle,
		name:    l.Name,
		color:   l.Color,
		fill:    m.Fill,
		stroke:  m.Stroke,
		outline: b.Commands(),
	})
	s.version++
}

func (s *Scene) Recolor(h layer.Handle, c layer.RGB) {
	for i := range s.layers {
		if s.layers[i].handle == h {
			s.layers[i].color = c
			s.version++
		}
	}
}

func (s *Scene) Clear() {
	s.layers = nil
	s.version++
}

func (s *Scene) Len() int { return len(s.layers) }

// Render draws the scene into a w x h cell area. markX/markY name a cell
// to highlight, or -1.
func (s *Scene) Render(cam *camera.Camera, w, h, markX, markY int) string {
	key := sceneKey{
		offset: cam.Offset, scale: cam.Scale, w: w, h: h, version: s.version,
		markX: markX, markY: markY, fill: s.showFill, edges: s.showEdges,
	}
	if key == s.cacheKey && s.cache != "" {
		return s.cache
	}
	br := newBrailleBuf(w, h)
	wm, hm := br.micro()
	screen := func(x, y float64) (float64, float64) {
		return cam.WorldToScreen(geom.Coord{X: x, Y: y}, wm, hm)
	}
	styles := make([]lipgloss.Style, len(s.layers))
	for i, l := range s.layers {
		styles[i] = lipgloss.NewStyle().Foreground(lipgloss.Color(l.color.Hex()))
		br.setPen(i)
		if s.showFill {
			rasterMesh(br, l.fill, screen)
		}
		// Strokes are usually thinner than a micro pixel once fitted, so
		// the centerlines are traced as well.
		rasterMesh(br, l.stroke, screen)
		for coords, closed := range path.Subpaths(l.outline) {
			if !s.showEdges && closed {
				continue
			}
			for i := 1; i < len(coords); i++ {
				ax, ay := screen(coords[i-1].X, coords[i-1].Y)
				bx, by := screen(coords[i].X, coords[i].Y)
				br.drawLine(ax, ay, bx, by)
			}
			if closed && len(coords) > 2 {
				ax, ay := screen(coords[len(coords)-1].X, coords[len(coords)-1].Y)
				bx, by := screen(coords[0].X, coords[0].Y)
				br.drawLine(ax, ay, bx, by)
			}
		}
	}
	if markX >= 0 && markY >= 0 {
		br.mark(markX, markY)
	}
	s.cache = strings.Join(br.toLines(styles), "\n")
	s.cacheKey = key
	return s.cache
}

func rasterMesh(br *brailleBuf, m tess.Mesh, screen func(x, y float64) (float64, float64)) {
	for i := range m.Triangles() {
		a, b, c := m.Triangle(i)
		ax, ay := screen(float64(a[0]), float64(a[1]))
		bx, by := screen(float64(b[0]), float64(b[1]))
		cx, cy := screen(float64(c[0]), float64(c[1]))
		br.fillTriangle(ax, ay, bx, by, cx, cy)
	}
}
