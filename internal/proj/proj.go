// Package proj reprojects geometry between coordinate reference systems
// named by EPSG code, CRS URN or a raw proj4 definition.
package proj

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/ctessum/geom/proj"

	"geoview/internal/geom"
)

var (
	ErrUnknownCRS   = errors.New("unknown coordinate reference system")
	ErrReprojection = errors.New("reprojection failed")
)

// reference: https://epsg.io
var definitions = map[string]string{
	"EPSG:4326":  "+proj=longlat +datum=WGS84 +no_defs",
	"EPSG:4269":  "+proj=longlat +ellps=GRS80 +towgs84=0,0,0,0,0,0,0 +no_defs",
	"EPSG:3857":  "+proj=merc +a=6378137 +b=6378137 +lat_ts=0 +lon_0=0 +x_0=0 +y_0=0 +k=1 +units=m +no_defs",
	"EPSG:2154":  "+proj=lcc +lat_1=49 +lat_2=44 +lat_0=46.5 +lon_0=3 +x_0=700000 +y_0=6600000 +ellps=GRS80 +towgs84=0,0,0,0,0,0,0 +units=m +no_defs",
	"EPSG:27700": "+proj=tmerc +lat_0=49 +lon_0=-2 +k=0.9996012717 +x_0=400000 +y_0=-100000 +ellps=airy +towgs84=446.448,-125.157,542.06,0.15,0.247,0.842,-20.489 +units=m +no_defs",
	"EPSG:5181":  "+proj=tmerc +lat_0=38 +lon_0=127 +k=1 +x_0=200000 +y_0=500000 +ellps=GRS80 +towgs84=0,0,0,0,0,0,0 +units=m +no_defs",
	"EPSG:32631": "+proj=utm +zone=31 +datum=WGS84 +units=m +no_defs",
}

var aliases = map[string]string{
	"CRS84":       "EPSG:4326",
	"WGS84":       "EPSG:4326",
	"EPSG:900913": "EPSG:3857",
	"EPSG:3785":   "EPSG:3857",
}

// Canonical returns the "EPSG:<code>" form of id. Accepted spellings are
// "EPSG:4326", "epsg:4326", "4326", "urn:ogc:def:crs:EPSG::4326" and the
// OGC CRS84 URN. Raw proj4 strings are returned unchanged.
func Canonical(id string) (string, error) {
	s := strings.TrimSpace(id)
	if strings.HasPrefix(s, "+proj=") {
		return s, nil
	}
	if rest, ok := strings.CutPrefix(strings.ToLower(s), "urn:ogc:def:crs:"); ok {
		parts := strings.Split(rest, ":")
		s = parts[0] + ":" + parts[len(parts)-1]
	}
	s = strings.ToUpper(s)
	if !strings.Contains(s, ":") && s != "CRS84" && s != "WGS84" {
		s = "EPSG:" + s
	}
	if after, ok := strings.CutPrefix(s, "OGC:"); ok {
		s = after
	}
	if a, ok := aliases[s]; ok {
		s = a
	}
	if _, ok := definitions[s]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCRS, id)
	}
	return s, nil
}

// Known lists the canonical codes with a built-in definition.
func Known() []string {
	codes := make([]string, 0, len(definitions))
	for c := range definitions {
		codes = append(codes, c)
	}
	slices.Sort(codes)
	return codes
}

func parse(id string) (*proj.SR, error) {
	c, err := Canonical(id)
	if err != nil {
		return nil, err
	}
	def := c
	if d, ok := definitions[c]; ok {
		def = d
	}
	sr, err := proj.Parse(def)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrUnknownCRS, id, err)
	}
	return sr, nil
}

// Transformer maps a single coordinate from one CRS to another.
type Transformer func(geom.Coord) (geom.Coord, error)

// Identity returns its input.
func Identity(c geom.Coord) (geom.Coord, error) { return c, nil }

// NewTransformer returns a Transformer from src to dst. Identical systems
// yield Identity without consulting the projection library.
func NewTransformer(src, dst string) (Transformer, error) {
	cs, err := Canonical(src)
	if err != nil {
		return nil, err
	}
	cd, err := Canonical(dst)
	if err != nil {
		return nil, err
	}
	if cs == cd {
		return Identity, nil
	}
	from, err := parse(cs)
	if err != nil {
		return nil, err
	}
	to, err := parse(cd)
	if err != nil {
		return nil, err
	}
	fn, err := from.NewTransform(to)
	if err != nil {
		return nil, fmt.Errorf("%w: %s -> %s: %v", ErrReprojection, cs, cd, err)
	}
	return func(c geom.Coord) (geom.Coord, error) {
		x, y, err := fn(c.X, c.Y)
		if err != nil {
			return geom.Coord{}, fmt.Errorf("%w: %s -> %s at %v: %v", ErrReprojection, cs, cd, c, err)
		}
		if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
			return geom.Coord{}, fmt.Errorf("%w: %s -> %s at %v: non-finite result", ErrReprojection, cs, cd, c)
		}
		return geom.Coord{X: x, Y: y}, nil
	}, nil
}

// Reproject returns a copy of g with every coordinate mapped through t.
// The first failing coordinate aborts the whole geometry.
func Reproject(g geom.Geometry, t Transformer) (geom.Geometry, error) {
	return geom.MapCoords(g, t)
}
