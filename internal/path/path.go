// Package path turns rings and lines into move/line/close drawing
// commands. The same command stream feeds tessellation input assembly and
// the vector preview sinks.
package path

import (
	"iter"

	"geoview/internal/geom"
)

// Op is a drawing instruction.
type Op uint8

const (
	MoveTo Op = iota
	LineTo
	Close
)

func (o Op) String() string {
	switch o {
	case MoveTo:
		return "MoveTo"
	case LineTo:
		return "LineTo"
	case Close:
		return "Close"
	}
	return "Op(?)"
}

// Command is one instruction. X and Y are zero for Close.
type Command struct {
	Op   Op
	X, Y float64
}

// Builder accumulates commands. The zero value is ready to use.
type Builder struct {
	cmds []Command
}

func (b *Builder) MoveTo(c geom.Coord) *Builder {
	b.cmds = append(b.cmds, Command{Op: MoveTo, X: c.X, Y: c.Y})
	return b
}

func (b *Builder) LineTo(c geom.Coord) *Builder {
	b.cmds = append(b.cmds, Command{Op: LineTo, X: c.X, Y: c.Y})
	return b
}

func (b *Builder) Close() *Builder {
	b.cmds = append(b.cmds, Command{Op: Close})
	return b
}

// Commands returns the accumulated instructions.
func (b *Builder) Commands() []Command { return b.cmds }

// Reset drops the accumulated commands and keeps the buffer.
func (b *Builder) Reset() { b.cmds = b.cmds[:0] }

// AppendCoords emits MoveTo for the first coordinate and LineTo for the
// rest. It reports whether anything was emitted.
func (b *Builder) AppendCoords(seq iter.Seq[geom.Coord]) bool {
	first := true
	for c := range seq {
		if first {
			b.MoveTo(c)
			first = false
			continue
		}
		b.LineTo(c)
	}
	return !first
}

// AppendRing is AppendCoords followed by Close. An empty ring emits nothing.
func (b *Builder) AppendRing(seq iter.Seq[geom.Coord]) {
	if b.AppendCoords(seq) {
		b.Close()
	}
}

// AppendPolygon appends the exterior ring then each hole.
func (b *Builder) AppendPolygon(p geom.Polygon) {
	b.AppendRing(p.Exterior.Coords())
	for _, r := range p.Interiors {
		b.AppendRing(r.Coords())
	}
}

// AppendGeometry appends the outline of every line and polygon in g. Points
// and collections nested inside collections have no outline.
func (b *Builder) AppendGeometry(g geom.Geometry) {
	b.appendGeometry(g, 0)
}

func (b *Builder) appendGeometry(g geom.Geometry, depth int) {
	switch g := g.(type) {
	case geom.LineString:
		b.AppendCoords(g.Coords())
	case geom.MultiLineString:
		for _, ls := range g {
			b.AppendCoords(ls.Coords())
		}
	case geom.Polygon:
		b.AppendPolygon(g)
	case geom.MultiPolygon:
		for _, p := range g {
			b.AppendPolygon(p)
		}
	case geom.Collection:
		if depth > 0 {
			return
		}
		for _, m := range g {
			b.appendGeometry(m, depth+1)
		}
	}
}

// Line returns the commands for one open line.
func Line(seq iter.Seq[geom.Coord]) []Command {
	var b Builder
	b.AppendCoords(seq)
	return b.Commands()
}

// Ring returns the commands for one closed ring.
func Ring(seq iter.Seq[geom.Coord]) []Command {
	var b Builder
	b.AppendRing(seq)
	return b.Commands()
}

// Subpaths splits a command stream at each MoveTo. Each subpath holds the
// coordinates it visits and whether it was closed.
func Subpaths(cmds []Command) iter.Seq2[[]geom.Coord, bool] {
	return func(yield func([]geom.Coord, bool) bool) {
		var cur []geom.Coord
		closed := false
		for _, c := range cmds {
			switch c.Op {
			case MoveTo:
				if len(cur) > 0 && !yield(cur, closed) {
					return
				}
				cur, closed = []geom.Coord{{X: c.X, Y: c.Y}}, false
			case LineTo:
				cur = append(cur, geom.Coord{X: c.X, Y: c.Y})
			case Close:
				closed = true
			}
		}
		if len(cur) > 0 {
			yield(cur, closed)
		}
	}
}
