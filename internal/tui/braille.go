package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// brailleBuf is a 2x4 micro-pixel grid per terminal cell. Each cell also
// remembers the pen of the last pixel set in it, since a cell shows one
// foreground color.
type brailleBuf struct {
	w, h int       // in cells
	m    [][]uint8 // per-cell 8-bit mask
	ink  [][]int16 // per-cell pen, -1 for none
	pen  int16

	markX, markY int // hover marker cell, -1 for none
}

func newBrailleBuf(w, h int) *brailleBuf {
	m := make([][]uint8, h)
	ink := make([][]int16, h)
	for i := range m {
		m[i] = make([]uint8, w)
		ink[i] = make([]int16, w)
		for j := range ink[i] {
			ink[i][j] = -1
		}
	}
	return &brailleBuf{w: w, h: h, m: m, ink: ink, markX: -1, markY: -1}
}

// micro returns the grid size in micro pixels.
func (b *brailleBuf) micro() (int, int) { return b.w * 2, b.h * 4 }

func (b *brailleBuf) setPen(p int) { b.pen = int16(p) }

// setPixel sets a micro-pixel at micro coords (2x4 per cell)
func (b *brailleBuf) setPixel(mx, my int) {
	if mx < 0 || my < 0 {
		return
	}
	cx, rx := mx/2, mx%2
	cy, ry := my/4, my%4
	if cy >= b.h || cx >= b.w {
		return
	}
	var bit uint8
	if rx == 0 {
		switch ry {
		case 0:
			bit = 0x01
		case 1:
			bit = 0x02
		case 2:
			bit = 0x04
		case 3:
			bit = 0x40
		}
	} else {
		switch ry {
		case 0:
			bit = 0x08
		case 1:
			bit = 0x10
		case 2:
			bit = 0x20
		case 3:
			bit = 0x80
		}
	}
	b.m[cy][cx] |= bit
	b.ink[cy][cx] = b.pen
}

// drawLine clips a segment given in micro-pixel floats to the grid and
// draws it with Bresenham.
func (b *brailleBuf) drawLine(x0, y0, x1, y1 float64) {
	wm, hm := b.micro()
	x0, y0, x1, y1, ok := clipSegment(x0, y0, x1, y1, float64(wm), float64(hm))
	if !ok {
		return
	}
	b.drawLineMicro(int(math.Floor(x0)), int(math.Floor(y0)), int(math.Floor(x1)), int(math.Floor(y1)))
}

// drawLineMicro draws a line on the microgrid using Bresenham
func (b *brailleBuf) drawLineMicro(x0, y0, x1, y1 int) {
	dx := abs(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -abs(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		b.setPixel(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// fillTriangle sets every micro pixel whose center lies inside the
// triangle, for either winding.
func (b *brailleBuf) fillTriangle(ax, ay, bx, by, cx, cy float64) {
	wm, hm := b.micro()
	fx0 := max(0, math.Floor(min(ax, bx, cx)))
	fx1 := min(float64(wm-1), math.Ceil(max(ax, bx, cx)))
	fy0 := max(0, math.Floor(min(ay, by, cy)))
	fy1 := min(float64(hm-1), math.Ceil(max(ay, by, cy)))
	// also rejects NaN bounds
	if !(fx0 <= fx1 && fy0 <= fy1) {
		return
	}
	minX, maxX, minY, maxY := int(fx0), int(fx1), int(fy0), int(fy1)
	area := (bx-ax)*(cy-ay) - (by-ay)*(cx-ax)
	if area == 0 {
		return
	}
	for y := minY; y <= maxY; y++ {
		py := float64(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float64(x) + 0.5
			w0 := (bx-ax)*(py-ay) - (by-ay)*(px-ax)
			w1 := (cx-bx)*(py-by) - (cy-by)*(px-bx)
			w2 := (ax-cx)*(py-cy) - (ay-cy)*(px-cx)
			if area > 0 && w0 >= 0 && w1 >= 0 && w2 >= 0 ||
				area < 0 && w0 <= 0 && w1 <= 0 && w2 <= 0 {
				b.setPixel(x, y)
			}
		}
	}
}

// mark highlights one cell regardless of its pixels.
func (b *brailleBuf) mark(cx, cy int) { b.markX, b.markY = cx, cy }

// toLines renders the grid, coloring each run of cells that share a pen
// with styles[pen].
func (b *brailleBuf) toLines(styles []lipgloss.Style) []string {
	out := make([]string, b.h)
	var sb, run strings.Builder
	for y := 0; y < b.h; y++ {
		sb.Reset()
		runPen := int16(-1)
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if runPen >= 0 && int(runPen) < len(styles) {
				sb.WriteString(styles[runPen].Render(run.String()))
			} else {
				sb.WriteString(run.String())
			}
			run.Reset()
		}
		for x := 0; x < b.w; x++ {
			if x == b.markX && y == b.markY {
				flush()
				sb.WriteString(markerStyle.Render("◯"))
				continue
			}
			mask := b.m[y][x]
			pen := b.ink[y][x]
			if mask == 0 {
				pen = -1
			}
			if pen != runPen {
				flush()
				runPen = pen
			}
			if mask == 0 {
				run.WriteRune(' ')
			} else {
				run.WriteRune(rune(0x2800 + int(mask)))
			}
		}
		flush()
		out[y] = sb.String()
	}
	return out
}

// clipSegment clips a segment to [0,w)x[0,h) with Liang-Barsky.
func clipSegment(x0, y0, x1, y1, w, h float64) (float64, float64, float64, float64, bool) {
	t0, t1 := 0.0, 1.0
	dx, dy := x1-x0, y1-y0
	edges := [4][2]float64{
		{-dx, x0},
		{dx, w - 1 - x0},
		{-dy, y0},
		{dy, h - 1 - y0},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return 0, 0, 0, 0, false
			}
			t0 = max(t0, r)
		} else {
			if r < t0 {
				return 0, 0, 0, 0, false
			}
			t1 = min(t1, r)
		}
	}
	return x0 + t0*dx, y0 + t0*dy, x0 + t1*dx, y0 + t1*dy, true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
