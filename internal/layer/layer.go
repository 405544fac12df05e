// Package layer stores loaded layers and answers containment queries
// against them.
package layer

import (
	"fmt"

	"geoview/internal/debug"
	"geoview/internal/geom"
)

// Handle identifies a layer. It goes stale when the collection is cleared.
type Handle struct {
	index int
	gen   uint32
}

func (h Handle) String() string { return fmt.Sprintf("layer#%d.%d", h.index, h.gen) }

// Index is the layer's position in storage order.
func (h Handle) Index() int { return h.index }

// Layer is a loaded geometry with everything needed to draw and query it.
type Layer struct {
	Handle       Handle
	Name         string
	Geometry     geom.Geometry
	BoundingRect geom.Rect
	Color        RGB
	Metadata     Metadata
	// Features holds per-feature properties, aligned with the members of
	// Geometry when it is a Collection.
	Features []Metadata
}

// ContainsCoord rejects on the bounding rect before the exact test.
func (l *Layer) ContainsCoord(c geom.Coord) bool {
	return l.BoundingRect.ContainsCoord(c) && geom.ContainsCoord(l.Geometry, c)
}

// Collection owns the loaded layers and the merged extent of all of them.
// It is not safe for concurrent use; the frame loop owns it.
type Collection struct {
	layers []Layer
	bounds geom.Rect
	hasAny bool
	gen    uint32
	added  int
	probes int // exact geometry tests run, for tests
}

func NewCollection() *Collection { return &Collection{} }

// Add computes the bounding rect, assigns the next palette color and
// appends the layer. Unsupported geometry kinds fail and leave the
// collection untouched.
func (c *Collection) Add(name string, g geom.Geometry, md Metadata, features []Metadata) (Handle, error) {
	r, err := geom.BoundingRect(g)
	if err != nil {
		return Handle{}, fmt.Errorf("layer %q: %w", name, err)
	}
	h := Handle{index: len(c.layers), gen: c.gen}
	c.layers = append(c.layers, Layer{
		Handle:       h,
		Name:         name,
		Geometry:     g,
		BoundingRect: r,
		Color:        ColorFor(c.added),
		Metadata:     md,
		Features:     features,
	})
	c.added++
	if c.hasAny {
		c.bounds = c.bounds.Merge(r)
	} else {
		c.bounds, c.hasAny = r, true
	}
	debug.Logger().Debug("layer added", "layer", h, "name", name, "bbox", r.String())
	return h, nil
}

// Get returns the layer for h, or false if h is stale or out of range.
func (c *Collection) Get(h Handle) (Layer, bool) {
	if h.gen != c.gen || h.index < 0 || h.index >= len(c.layers) {
		return Layer{}, false
	}
	return c.layers[h.index], true
}

// Recolor changes a layer's color; it reports false for a stale handle.
func (c *Collection) Recolor(h Handle, col RGB) bool {
	if _, ok := c.Get(h); !ok {
		return false
	}
	c.layers[h.index].Color = col
	return true
}

// Clear drops every layer. Handles issued before the call become stale.
func (c *Collection) Clear() {
	c.layers = nil
	c.bounds, c.hasAny = geom.Rect{}, false
	c.gen++
}

// BoundingRect is the merge of every layer's rect; false when empty.
func (c *Collection) BoundingRect() (geom.Rect, bool) { return c.bounds, c.hasAny }

func (c *Collection) Len() int { return len(c.layers) }

// Layers returns the layers in storage order.
func (c *Collection) Layers() []Layer { return c.layers }

// ContainingCoord returns every layer containing coord, in storage order.
// A coordinate outside the merged extent is rejected before any layer is
// looked at, and each layer is rejected on its own rect before the exact
// point-in-geometry test.
func (c *Collection) ContainingCoord(coord geom.Coord) []Layer {
	if !c.hasAny || !c.bounds.ContainsCoord(coord) {
		return nil
	}
	var out []Layer
	for i := range c.layers {
		l := &c.layers[i]
		if !l.BoundingRect.ContainsCoord(coord) {
			continue
		}
		c.probes++
		if geom.ContainsCoord(l.Geometry, coord) {
			out = append(out, *l)
		}
	}
	return out
}
