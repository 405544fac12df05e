package tess

import (
	"errors"
	"math"
	"sort"
)

// ErrTriangulationStalled means the clipping loop ran out of its iteration
// budget. The triangles produced before that point are still returned.
var ErrTriangulationStalled = errors.New("triangulation stalled")

// node is a vertex in the circular doubly linked list being clipped.
type node struct {
	i          int
	x, y       float64
	prev, next *node
}

// Triangulate ear-clips one polygon. data packs the vertices as x0, y0, x1,
// y1, ...; holeIndices lists the vertex index where each hole ring starts.
// The result indexes into data's vertices, three per triangle. Degenerate
// input yields no triangles and no error.
func Triangulate(data []float64, holeIndices []int) ([]int, error) {
	n := len(data) / 2
	holes := sanitizeHoles(holeIndices, n)
	outerEnd := n
	if len(holes) > 0 {
		outerEnd = holes[0]
	}
	outer := linkRing(data, 0, outerEnd, true)
	if outer == nil || outer.next == outer.prev {
		return nil, nil
	}
	if len(holes) > 0 {
		outer = eliminateHoles(data, holes, n, outer)
	}
	outer = filterPoints(outer, nil)
	if outer == nil || outer.next == outer.prev {
		return nil, nil
	}
	return clipEars(outer)
}

// sanitizeHoles drops hole starts that are out of range or out of order.
func sanitizeHoles(holeIndices []int, n int) []int {
	var out []int
	last := 0
	for _, h := range holeIndices {
		if h <= last || h >= n {
			continue
		}
		out = append(out, h)
		last = h
	}
	return out
}

type clipper struct {
	tris   []int
	budget int
}

func clipEars(ear *node) ([]int, error) {
	m := 0
	for p := ear; ; p = p.next {
		m++
		if p.next == ear {
			break
		}
	}
	c := &clipper{
		tris:   make([]int, 0, 3*(m-2)),
		budget: m*m + 4*m + 8,
	}
	if !c.clip(ear, 0) {
		return c.tris, ErrTriangulationStalled
	}
	return c.tris, nil
}

// clip removes ears until three vertices remain. A full pass without an ear
// escalates: drop duplicate and collinear vertices, then cut out local self
// intersections, then split the ring along a valid diagonal and clip both
// halves. When no diagonal exists the current vertex is force-clipped. It
// reports false once the shared budget runs out.
func (c *clipper) clip(ear *node, pass int) bool {
	stop := ear
	for ear.prev != ear.next {
		if c.budget--; c.budget < 0 {
			return false
		}
		prev, next := ear.prev, ear.next
		if isEar(ear) {
			c.tris = append(c.tris, prev.i, ear.i, next.i)
			removeNode(ear)
			ear, stop = next.next, next.next
			continue
		}
		ear = next
		if ear != stop {
			continue
		}
		switch pass {
		case 0:
			ear = filterPoints(ear, nil)
		case 1:
			ear = c.cureLocalIntersections(filterPoints(ear, nil))
		case 2:
			if c.splitClip(ear) {
				return c.budget >= 0
			}
		default:
			prev, next = ear.prev, ear.next
			if area(prev, ear, next) != 0 {
				c.tris = append(c.tris, prev.i, ear.i, next.i)
			}
			removeNode(ear)
			ear = next
			pass = -1
		}
		pass++
		stop = ear
	}
	return true
}

// cureLocalIntersections clips the triangle a p b wherever the edges a-p
// and p.next-b cross.
func (c *clipper) cureLocalIntersections(start *node) *node {
	p := start
	for {
		a, b := p.prev, p.next.next
		if !equals(a, b) && intersects(a, p, p.next, b) && locallyInside(a, b) && locallyInside(b, a) {
			c.tris = append(c.tris, a.i, p.i, b.i)
			removeNode(p)
			removeNode(p.next)
			p, start = b, b
		}
		p = p.next
		if p == start {
			break
		}
	}
	return filterPoints(p, nil)
}

// splitClip looks for a diagonal that lies inside the ring, splits the ring
// along it and clips both halves. It reports false when there is none.
func (c *clipper) splitClip(start *node) bool {
	a := start
	for {
		for b := a.next.next; b != a.prev; b = b.next {
			if a.i != b.i && isValidDiagonal(a, b) {
				d := splitPolygon(a, b)
				a = filterPoints(a, a.next)
				d = filterPoints(d, d.next)
				c.clip(a, 0)
				c.clip(d, 0)
				return true
			}
		}
		a = a.next
		if a == start {
			return false
		}
	}
}

func isEar(ear *node) bool {
	a, b, c := ear.prev, ear, ear.next
	if area(a, b, c) >= 0 {
		return false // reflex
	}
	minX, maxX := math.Min(a.x, math.Min(b.x, c.x)), math.Max(a.x, math.Max(b.x, c.x))
	minY, maxY := math.Min(a.y, math.Min(b.y, c.y)), math.Max(a.y, math.Max(b.y, c.y))
	for p := c.next; p != a; p = p.next {
		if p.x < minX || p.x > maxX || p.y < minY || p.y > maxY {
			continue
		}
		if p.x == a.x && p.y == a.y {
			continue
		}
		if pointInTriangle(a.x, a.y, b.x, b.y, c.x, c.y, p.x, p.y) && area(p.prev, p, p.next) >= 0 {
			return false
		}
	}
	return true
}

// eliminateHoles links every hole into the outer ring through a bridge,
// leftmost hole first.
func eliminateHoles(data []float64, holes []int, n int, outer *node) *node {
	queue := make([]*node, 0, len(holes))
	for k, start := range holes {
		end := n
		if k+1 < len(holes) {
			end = holes[k+1]
		}
		list := filterPoints(linkRing(data, start, end, false), nil)
		if list == nil || list.next == list.prev {
			continue // degenerate hole
		}
		queue = append(queue, leftmost(list))
	}
	sort.Slice(queue, func(i, j int) bool {
		if queue[i].x != queue[j].x {
			return queue[i].x < queue[j].x
		}
		return queue[i].y < queue[j].y
	})
	for _, h := range queue {
		outer = eliminateHole(h, outer)
	}
	return outer
}

func eliminateHole(hole, outer *node) *node {
	bridge := findHoleBridge(hole, outer)
	if bridge == nil {
		return outer // hole not inside the outer ring
	}
	reverse := splitPolygon(bridge, hole)
	filterPoints(reverse, reverse.next)
	return filterPoints(bridge, bridge.next)
}

// findHoleBridge casts a ray left from the hole's leftmost vertex, takes the
// nearest outer edge it hits, and picks the vertex of that edge, or the
// vertex inside the hit triangle with the smallest angle to the ray, so the
// bridge crosses no other edge.
func findHoleBridge(hole, outer *node) *node {
	hx, hy := hole.x, hole.y
	qx := math.Inf(-1)
	var m *node
	p := outer
	if equals(hole, p) {
		return p
	}
	for {
		if equals(hole, p.next) {
			return p.next
		}
		if hy <= p.y && hy >= p.next.y && p.next.y != p.y {
			x := p.x + (hy-p.y)*(p.next.x-p.x)/(p.next.y-p.y)
			if x <= hx && x > qx {
				qx = x
				m = p.next
				if p.x < p.next.x {
					m = p
				}
				if x == hx {
					return m // hole touches the outer edge
				}
			}
		}
		p = p.next
		if p == outer {
			break
		}
	}
	if m == nil {
		return nil
	}

	stop := m
	mx, my := m.x, m.y
	tanMin := math.Inf(1)
	ax, cx := qx, hx
	if hy < my {
		ax, cx = hx, qx
	}
	p = m
	for {
		if hx >= p.x && p.x >= mx && hx != p.x && pointInTriangle(ax, hy, mx, my, cx, hy, p.x, p.y) {
			tan := math.Abs(hy-p.y) / (hx - p.x)
			if locallyInside(p, hole) &&
				(tan < tanMin || (tan == tanMin && (p.x > m.x || (p.x == m.x && sectorContainsSector(m, p))))) {
				m = p
				tanMin = tan
			}
		}
		p = p.next
		if p == stop {
			break
		}
	}
	return m
}

// splitPolygon joins a and b with two bridge edges, duplicating both
// vertices, and returns the duplicate of b.
func splitPolygon(a, b *node) *node {
	a2 := &node{i: a.i, x: a.x, y: a.y}
	b2 := &node{i: b.i, x: b.x, y: b.y}
	an, bp := a.next, b.prev

	a.next, b.prev = b, a
	a2.next, an.prev = an, a2
	b2.next, a2.prev = a2, b2
	bp.next, b2.prev = b2, bp
	return b2
}

// linkRing builds a circular list over vertices [start, end). Outer rings
// come out counter-clockwise and holes clockwise, whatever the input order.
// A closing vertex equal to the first is dropped.
func linkRing(data []float64, start, end int, outer bool) *node {
	var last *node
	if outer == (signedArea(data, start, end) > 0) {
		for i := start; i < end; i++ {
			last = insertNode(i, data[2*i], data[2*i+1], last)
		}
	} else {
		for i := end - 1; i >= start; i-- {
			last = insertNode(i, data[2*i], data[2*i+1], last)
		}
	}
	if last != nil && last.next != last && equals(last, last.next) {
		removeNode(last)
		last = last.next
	}
	return last
}

func signedArea(data []float64, start, end int) float64 {
	var sum float64
	for i, j := start, end-1; i < end; j, i = i, i+1 {
		sum += (data[2*j] - data[2*i]) * (data[2*i+1] + data[2*j+1])
	}
	return sum
}

// filterPoints removes duplicate and collinear vertices between start and
// end. It returns a surviving node, or a single self-linked node when the
// ring collapses.
func filterPoints(start, end *node) *node {
	if start == nil {
		return nil
	}
	if end == nil {
		end = start
	}
	p := start
	for {
		again := false
		if equals(p, p.next) || area(p.prev, p, p.next) == 0 {
			removeNode(p)
			p = p.prev
			end = p
			if p == p.next {
				break
			}
			again = true
		} else {
			p = p.next
		}
		if !again && p == end {
			break
		}
	}
	return end
}

func leftmost(start *node) *node {
	best := start
	for p := start.next; p != start; p = p.next {
		if p.x < best.x || (p.x == best.x && p.y < best.y) {
			best = p
		}
	}
	return best
}

func insertNode(i int, x, y float64, last *node) *node {
	p := &node{i: i, x: x, y: y}
	if last == nil {
		p.prev, p.next = p, p
		return p
	}
	p.next, p.prev = last.next, last
	last.next.prev = p
	last.next = p
	return p
}

func removeNode(p *node) {
	p.next.prev = p.prev
	p.prev.next = p.next
}

// area is twice the signed area of triangle pqr; negative for a
// counter-clockwise (convex) turn.
func area(p, q, r *node) float64 {
	return (q.y-p.y)*(r.x-q.x) - (q.x-p.x)*(r.y-q.y)
}

func equals(a, b *node) bool { return a.x == b.x && a.y == b.y }

// pointInTriangle is inclusive of the triangle's edges.
func pointInTriangle(ax, ay, bx, by, cx, cy, px, py float64) bool {
	return (cx-px)*(ay-py) >= (ax-px)*(cy-py) &&
		(ax-px)*(by-py) >= (bx-px)*(ay-py) &&
		(bx-px)*(cy-py) >= (cx-px)*(by-py)
}

func locallyInside(a, b *node) bool {
	if area(a.prev, a, a.next) < 0 {
		return area(a, b, a.next) >= 0 && area(a, a.prev, b) >= 0
	}
	return area(a, b, a.prev) < 0 || area(a, a.next, b) < 0
}

func sectorContainsSector(m, p *node) bool {
	return area(m.prev, m, p.prev) < 0 && area(p.next, m, m.next) < 0
}

func isValidDiagonal(a, b *node) bool {
	if a.next.i == b.i || a.prev.i == b.i || intersectsPolygon(a, b) {
		return false
	}
	if locallyInside(a, b) && locallyInside(b, a) && middleInside(a, b) &&
		(area(a.prev, a, b.prev) != 0 || area(a, b.prev, b) != 0) {
		return true
	}
	// coincident vertices joined by a zero-length diagonal
	return equals(a, b) && area(a.prev, a, a.next) > 0 && area(b.prev, b, b.next) > 0
}

// intersects reports whether segments p1-q1 and p2-q2 cross or touch.
func intersects(p1, q1, p2, q2 *node) bool {
	o1 := sign(area(p1, q1, p2))
	o2 := sign(area(p1, q1, q2))
	o3 := sign(area(p2, q2, p1))
	o4 := sign(area(p2, q2, q1))
	switch {
	case o1 != o2 && o3 != o4:
		return true
	case o1 == 0 && onSegment(p1, p2, q1),
		o2 == 0 && onSegment(p1, q2, q1),
		o3 == 0 && onSegment(p2, p1, q2),
		o4 == 0 && onSegment(p2, q1, q2):
		return true
	}
	return false
}

// onSegment reports whether q lies in the bounding box of p-r; callers
// have already checked collinearity.
func onSegment(p, q, r *node) bool {
	return q.x <= math.Max(p.x, r.x) && q.x >= math.Min(p.x, r.x) &&
		q.y <= math.Max(p.y, r.y) && q.y >= math.Min(p.y, r.y)
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// intersectsPolygon reports whether a-b crosses a ring edge not incident
// to a or b.
func intersectsPolygon(a, b *node) bool {
	p := a
	for {
		if p.i != a.i && p.next.i != a.i && p.i != b.i && p.next.i != b.i && intersects(p, p.next, a, b) {
			return true
		}
		p = p.next
		if p == a {
			return false
		}
	}
}

// middleInside is an even-odd test of the midpoint of a-b against the ring.
func middleInside(a, b *node) bool {
	px, py := (a.x+b.x)/2, (a.y+b.y)/2
	inside := false
	p := a
	for {
		if (p.y > py) != (p.next.y > py) && p.next.y != p.y &&
			px < (p.next.x-p.x)*(py-p.y)/(p.next.y-p.y)+p.x {
			inside = !inside
		}
		p = p.next
		if p == a {
			return inside
		}
	}
}
