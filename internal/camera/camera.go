// Package camera holds the 2D view state: an offset in world units and a
// uniform scale in world units per screen pixel.
package camera

import (
	"geoview/internal/debug"
	"geoview/internal/geom"
)

// Input is a discrete pan or zoom request.
type Input int

const (
	PanUp Input = iota
	PanDown
	PanLeft
	PanRight
	ZoomIn
	ZoomOut
)

func (i Input) String() string {
	switch i {
	case PanUp:
		return "pan-up"
	case PanDown:
		return "pan-down"
	case PanLeft:
		return "pan-left"
	case PanRight:
		return "pan-right"
	case ZoomIn:
		return "zoom-in"
	case ZoomOut:
		return "zoom-out"
	}
	return "unknown"
}

// Config tunes input response and fitting.
type Config struct {
	PanStep        float32 // screen pixels per pan input
	ZoomFactor     float32 // multiplicative step per zoom input
	ReferenceWidth float64 // screen width a fitted layer spans
	MinScale       float32
	MaxScale       float32
}

func DefaultConfig() Config {
	return Config{
		PanStep:        15,
		ZoomFactor:     1.3,
		ReferenceWidth: 1000,
		MinScale:       1e-9,
		MaxScale:       1e9,
	}
}

// Offset is the world position at the center of the view.
type Offset struct {
	X, Y float32
}

// Camera is the single "active" state of the controller. Consumers read
// Offset and Scale every frame; there is no animation.
type Camera struct {
	Offset Offset
	Scale  float32
	cfg    Config
}

// New returns a camera at the origin with scale 1.
func New(cfg Config) *Camera {
	if cfg.ZoomFactor <= 1 {
		cfg.ZoomFactor = DefaultConfig().ZoomFactor
	}
	if cfg.ReferenceWidth <= 0 {
		cfg.ReferenceWidth = DefaultConfig().ReferenceWidth
	}
	if cfg.MinScale <= 0 || cfg.MaxScale < cfg.MinScale {
		cfg.MinScale, cfg.MaxScale = DefaultConfig().MinScale, DefaultConfig().MaxScale
	}
	return &Camera{Scale: 1, cfg: cfg}
}

// Apply handles one pan or zoom input.
func (c *Camera) Apply(in Input) {
	step := c.cfg.PanStep
	switch in {
	case PanUp:
		c.PanBy(0, step)
	case PanDown:
		c.PanBy(0, -step)
	case PanLeft:
		c.PanBy(-step, 0)
	case PanRight:
		c.PanBy(step, 0)
	case ZoomIn:
		c.setScale(c.Scale / c.cfg.ZoomFactor)
	case ZoomOut:
		c.setScale(c.Scale * c.cfg.ZoomFactor)
	}
}

// PanBy moves the view by a screen-space amount, so pan speed looks the
// same at every zoom level.
func (c *Camera) PanBy(dx, dy float32) {
	c.Offset.X += dx * c.Scale
	c.Offset.Y += dy * c.Scale
}

// Fit centers the view on r and scales so r's width spans ReferenceWidth
// pixels. Height and viewport aspect are not considered. A zero-width rect
// keeps the current scale.
func (c *Camera) Fit(r geom.Rect) {
	center := r.Center()
	c.Offset = Offset{X: float32(center.X), Y: float32(center.Y)}
	if w := r.Width(); w > 0 {
		c.setScale(float32(w / c.cfg.ReferenceWidth))
	}
	debug.Logger().Debug("camera fit", "offset_x", c.Offset.X, "offset_y", c.Offset.Y, "scale", c.Scale)
}

// SetReferenceWidth changes the screen width that later fits span. It
// leaves the current view alone.
func (c *Camera) SetReferenceWidth(px float64) {
	if px > 0 {
		c.cfg.ReferenceWidth = px
	}
}

func (c *Camera) setScale(s float32) {
	c.Scale = min(max(s, c.cfg.MinScale), c.cfg.MaxScale)
}

// WorldToScreen maps a world coordinate to screen pixels for a w x h
// viewport, y growing downward.
func (c *Camera) WorldToScreen(p geom.Coord, w, h int) (x, y float64) {
	s := float64(c.Scale)
	x = (p.X-float64(c.Offset.X))/s + float64(w)/2
	y = float64(h)/2 - (p.Y-float64(c.Offset.Y))/s
	return x, y
}

// ScreenToWorld is the inverse of WorldToScreen.
func (c *Camera) ScreenToWorld(x, y float64, w, h int) geom.Coord {
	s := float64(c.Scale)
	return geom.Coord{
		X: (x-float64(w)/2)*s + float64(c.Offset.X),
		Y: (float64(h)/2-y)*s + float64(c.Offset.Y),
	}
}
