package viewer

import (
	"fmt"

	"geoview/internal/layer"
)

// EventKind tags Event. Events of one kind are reported in the order they
// happened.
type EventKind int

const (
	EventLayerLoaded EventKind = iota
	EventLayerSpawned
	EventLoadFailed
	EventCRSChanged
	EventSettingsRejected
	EventLayerRecolored
	EventCleared
)

func (k EventKind) String() string {
	switch k {
	case EventLayerLoaded:
		return "layer-loaded"
	case EventLayerSpawned:
		return "layer-spawned"
	case EventLoadFailed:
		return "load-failed"
	case EventCRSChanged:
		return "crs-changed"
	case EventSettingsRejected:
		return "settings-rejected"
	case EventLayerRecolored:
		return "layer-recolored"
	case EventCleared:
		return "cleared"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event reports something a Frame did.
type Event struct {
	Kind   EventKind
	Handle layer.Handle
	Name   string
	CRS    string
	OldCRS string
	Err    error
}

func (e Event) String() string {
	switch e.Kind {
	case EventLoadFailed:
		return fmt.Sprintf("%s %s: %v", e.Kind, e.Name, e.Err)
	case EventSettingsRejected:
		return fmt.Sprintf("%s %s: %v", e.Kind, e.CRS, e.Err)
	case EventCRSChanged:
		return fmt.Sprintf("%s %s -> %s", e.Kind, e.OldCRS, e.CRS)
	case EventCleared:
		return e.Kind.String()
	}
	return fmt.Sprintf("%s %s (%s)", e.Kind, e.Name, e.Handle)
}
