// Package viewer is the frame loop core: it owns the layer collection and
// the camera, merges finished background loads once per frame, spawns
// layer meshes into a Sink and keeps the camera fitted to new layers.
package viewer

import (
	"context"
	"fmt"

	"geoview/internal/camera"
	"geoview/internal/debug"
	"geoview/internal/geom"
	"geoview/internal/layer"
	"geoview/internal/loader"
	"geoview/internal/proj"
)

// Config holds the viewer's tunables.
type Config struct {
	SourceCRS   string
	TargetCRS   string
	Camera      camera.Config
	StrokeWidth float64 // world units; 0 derives it from each layer's extent
	QueueSize   int     // finished loads buffered between frames
}

func DefaultConfig() Config {
	return Config{
		SourceCRS: "EPSG:4326",
		TargetCRS: "EPSG:3857",
		Camera:    camera.DefaultConfig(),
		QueueSize: 16,
	}
}

// Sink turns layer meshes into something drawable.
type Sink interface {
	Spawn(l layer.Layer, m Meshes)
	Recolor(h layer.Handle, c layer.RGB)
	Clear()
}

type recolor struct {
	h layer.Handle
	c layer.RGB
}

// Viewer is not safe for concurrent use; call it from the frame loop only.
// Background work reaches it exclusively through the loader queue.
type Viewer struct {
	cfg    Config
	layers *layer.Collection
	cam    *camera.Camera
	loads  *loader.Loader
	sink   Sink

	unspawned []layer.Handle
	crs       []string
	recolors  []recolor
	clear     bool
	events    []Event
}

// New returns a viewer drawing into sink. A nil sink discards meshes.
func New(cfg Config, sink Sink) (*Viewer, error) {
	for _, id := range []string{cfg.SourceCRS, cfg.TargetCRS} {
		if _, err := proj.Canonical(id); err != nil {
			return nil, err
		}
	}
	if sink == nil {
		sink = discard{}
	}
	return &Viewer{
		cfg:    cfg,
		layers: layer.NewCollection(),
		cam:    camera.New(cfg.Camera),
		loads:  loader.New(cfg.QueueSize),
		sink:   sink,
	}, nil
}

func (v *Viewer) Camera() *camera.Camera           { return v.cam }
func (v *Viewer) Layers() *layer.Collection        { return v.layers }
func (v *Viewer) Config() Config                   { return v.cfg }
func (v *Viewer) PendingLoads() int                { return v.loads.Pending() }
func (v *Viewer) Input(in camera.Input)            { v.cam.Apply(in) }
func (v *Viewer) Hover(c geom.Coord) []layer.Layer { return v.layers.ContainingCoord(c) }

// Open starts loading src in the background with the CRS settings in
// effect now. The result is merged by a later Frame.
func (v *Viewer) Open(ctx context.Context, src loader.Source) uint64 {
	id := v.loads.Start(ctx, loader.Request{
		Source:    src,
		SourceCRS: v.cfg.SourceCRS,
		TargetCRS: v.cfg.TargetCRS,
	})
	debug.Logger().Debug("load started", "id", id, "name", src.Name(), "source_crs", v.cfg.SourceCRS, "target_crs", v.cfg.TargetCRS)
	return id
}

// Cancel abandons a background load; nothing from it is ever published.
func (v *Viewer) Cancel(id uint64) bool { return v.loads.Cancel(id) }

// Load adds an already parsed and reprojected collection as one layer,
// taking its coordinates to be in the current target CRS. properties, when
// present, holds one map per collection member. The layer's meshes are
// spawned by the next Frame.
func (v *Viewer) Load(c geom.Collection, label string, properties []map[string]any) (layer.Handle, error) {
	return v.load(c, label, v.cfg.TargetCRS, properties)
}

func (v *Viewer) load(c geom.Collection, label, crs string, properties []map[string]any) (layer.Handle, error) {
	md := layer.Metadata{}
	md.Set("name", label)
	md.Set("features", len(c))
	md.Set("crs", crs)
	var features []layer.Metadata
	if len(properties) > 0 {
		features = make([]layer.Metadata, len(properties))
		for i, p := range properties {
			features[i] = layer.MetadataFromMap(p)
		}
	}
	h, err := v.layers.Add(label, c, md, features)
	if err != nil {
		return layer.Handle{}, err
	}
	v.unspawned = append(v.unspawned, h)
	v.emit(Event{Kind: EventLayerLoaded, Handle: h, Name: label})
	return h, nil
}

// SetTargetCRS requests a new target CRS for subsequent loads. When
// several requests arrive within one frame only the last is applied.
func (v *Viewer) SetTargetCRS(id string) { v.crs = append(v.crs, id) }

// Recolor requests a color change, applied by the next Frame.
func (v *Viewer) Recolor(h layer.Handle, c layer.RGB) {
	v.recolors = append(v.recolors, recolor{h, c})
}

// Clear requests that every layer be dropped by the next Frame.
func (v *Viewer) Clear() { v.clear = true }

// Frame runs one iteration of the loop: settings, clear, finished loads,
// mesh spawning, camera fit, recolors. It returns the events produced,
// in order.
func (v *Viewer) Frame() []Event {
	v.applySettings()
	if v.clear {
		v.clear = false
		v.layers.Clear()
		v.unspawned = nil
		v.sink.Clear()
		v.emit(Event{Kind: EventCleared})
	}
	for _, o := range v.loads.Drain() {
		v.merge(o)
	}
	spawned := v.spawn()
	for _, h := range spawned {
		v.fit(h)
	}
	for _, rc := range v.recolors {
		if v.layers.Recolor(rc.h, rc.c) {
			v.sink.Recolor(rc.h, rc.c)
			v.emit(Event{Kind: EventLayerRecolored, Handle: rc.h})
		}
	}
	v.recolors = v.recolors[:0]

	out := v.events
	v.events = nil
	return out
}

func (v *Viewer) applySettings() {
	if len(v.crs) == 0 {
		return
	}
	next := v.crs[len(v.crs)-1]
	v.crs = v.crs[:0]
	c, err := proj.Canonical(next)
	if err != nil {
		v.emit(Event{Kind: EventSettingsRejected, CRS: next, Err: err})
		return
	}
	if c == v.cfg.TargetCRS {
		return
	}
	old := v.cfg.TargetCRS
	v.cfg.TargetCRS = c
	debug.Logger().Info("target crs changed", "old", old, "new", c)
	v.emit(Event{Kind: EventCRSChanged, CRS: c, OldCRS: old})
}

func (v *Viewer) merge(o loader.Outcome) {
	if o.Err != nil {
		debug.Logger().Error("load failed", "id", o.ID, "name", o.Name, "err", o.Err)
		v.emit(Event{Kind: EventLoadFailed, Name: o.Name, Err: o.Err})
		return
	}
	if o.TargetCRS != v.cfg.TargetCRS {
		debug.Logger().Debug("layer projected with an earlier target crs", "name", o.Name, "crs", o.TargetCRS)
	}
	if _, err := v.load(o.Document.Collection, o.Name, o.TargetCRS, o.Document.Properties); err != nil {
		debug.Logger().Error("load failed", "id", o.ID, "name", o.Name, "err", err)
		v.emit(Event{Kind: EventLoadFailed, Name: o.Name, Err: err})
	}
}

func (v *Viewer) spawn() []layer.Handle {
	var spawned []layer.Handle
	for _, h := range v.unspawned {
		l, ok := v.layers.Get(h)
		if !ok {
			continue
		}
		m := BuildMeshes(l.Geometry, strokeWidthFor(v.cfg.StrokeWidth, l.BoundingRect))
		v.sink.Spawn(l, m)
		spawned = append(spawned, h)
		ev := Event{Kind: EventLayerSpawned, Handle: h, Name: l.Name}
		if m.Stalled > 0 {
			ev.Err = fmt.Errorf("%d polygon(s) only partially triangulated", m.Stalled)
		}
		v.emit(ev)
	}
	v.unspawned = v.unspawned[:0]
	return spawned
}

func (v *Viewer) fit(h layer.Handle) {
	l, ok := v.layers.Get(h)
	if !ok {
		return
	}
	debug.Logger().Debug("moving camera to look at new layer", "layer", h)
	v.cam.Fit(l.BoundingRect)
}

func (v *Viewer) emit(e Event) { v.events = append(v.events, e) }

// Close abandons every background load.
func (v *Viewer) Close() { v.loads.Close() }

type discard struct{}

func (discard) Spawn(layer.Layer, Meshes)       {}
func (discard) Recolor(layer.Handle, layer.RGB) {}
func (discard) Clear()                          {}
