package tui

import (
	"fmt"

	table "github.com/charmbracelet/bubbles/table"

	"geoview/internal/geom"
	"geoview/internal/layer"
)

// refreshAttrs rebuilds the table from the features under the cursor, or
// from a per-layer summary when nothing is hovered.
func (m *Model) refreshAttrs() {
	var cols []string
	var rows [][]string
	if m.hovering && len(m.hoverHits) > 0 {
		cols, rows = featureAttributes(m.hoverHits, m.hoverWorld)
	} else {
		cols, rows = layerSummary(m.v.Layers().Layers())
	}
	// If there are no columns or rows, disable attributes view to avoid rendering panics
	if len(cols) == 0 || len(rows) == 0 {
		m.showAttrs = false
		m.status = "no attributes here"
		return
	}
	tcols := make([]table.Column, 0, len(cols)+1)
	tcols = append(tcols, table.Column{Title: "#", Width: 4})
	maxColW := 24
	for _, c := range cols {
		tcols = append(tcols, table.Column{Title: c, Width: min(len(c)+2, maxColW)})
	}
	trows := make([]table.Row, 0, len(rows))
	for i, r := range rows {
		row := make([]string, 0, len(tcols))
		row = append(row, fmt.Sprintf("%d", i+1))
		row = append(row, r...)
		// Normalize each row to match the number of table columns
		for len(row) < len(tcols) {
			row = append(row, "")
		}
		trows = append(trows, table.Row(row[:len(tcols)]))
	}
	// Avoid transient mismatch: clear rows, set columns, then set rows
	m.tbl.SetRows(nil)
	m.tbl.SetColumns(tcols)
	m.tbl.SetRows(trows)
}

type featureRow struct {
	layerName string
	md        layer.Metadata
}

// featureAttributes lists the properties of every feature containing at,
// one row per feature, keyed by the union of property names.
func featureAttributes(layers []layer.Layer, at geom.Coord) ([]string, [][]string) {
	cols := []string{"layer"}
	seen := map[string]int{}
	var hits []featureRow
	for _, l := range layers {
		members, ok := l.Geometry.(geom.Collection)
		if !ok {
			continue
		}
		for i, g := range members {
			if i >= len(l.Features) || !geom.ContainsCoord(g, at) {
				continue
			}
			md := l.Features[i]
			for _, k := range md.Keys() {
				if _, ok := seen[k]; !ok {
					seen[k] = len(cols)
					cols = append(cols, k)
				}
			}
			hits = append(hits, featureRow{l.Name, md})
		}
	}
	rows := make([][]string, 0, len(hits))
	for _, h := range hits {
		row := make([]string, len(cols))
		row[0] = h.layerName
		for k, v := range h.md.All() {
			row[seen[k]] = layer.FormatValue(v)
		}
		rows = append(rows, row)
	}
	return cols, rows
}

func layerSummary(layers []layer.Layer) ([]string, [][]string) {
	cols := []string{"name", "features", "crs", "bbox", "color"}
	rows := make([][]string, 0, len(layers))
	for _, l := range layers {
		rows = append(rows, []string{
			l.Name,
			l.Metadata.String("features"),
			l.Metadata.String("crs"),
			l.BoundingRect.String(),
			l.Color.Hex(),
		})
	}
	return cols, rows
}
