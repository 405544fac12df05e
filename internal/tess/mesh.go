// Package tess converts polygons and lines into triangle meshes ready for a
// render sink. Everything here is a pure function of its input.
package tess

import "math"

// Mesh is an indexed triangle list. Positions are packed as GPU-style
// float32 pairs; Indices holds three entries per triangle.
type Mesh struct {
	Positions [][2]float32
	Indices   []uint32
}

// Triangles is the number of triangles in the mesh.
func (m Mesh) Triangles() int { return len(m.Indices) / 3 }

// Empty reports whether the mesh has no triangles.
func (m Mesh) Empty() bool { return len(m.Indices) == 0 }

// Triangle returns the corners of triangle t.
func (m Mesh) Triangle(t int) (a, b, c [2]float32) {
	return m.Positions[m.Indices[3*t]], m.Positions[m.Indices[3*t+1]], m.Positions[m.Indices[3*t+2]]
}

// Area sums the unsigned area of every triangle.
func (m Mesh) Area() float64 {
	var sum float64
	for t := range m.Triangles() {
		a, b, c := m.Triangle(t)
		sum += math.Abs(float64((b[0]-a[0])*(c[1]-a[1])-(c[0]-a[0])*(b[1]-a[1]))) / 2
	}
	return sum
}
