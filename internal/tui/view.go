package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const sidebarWidth = 28

// layout is the screen geometry shared by View and mouse handling.
type layout struct {
	contentW, contentH int
	sidebarW           int
	mapX, mapY         int
	mapW, mapH         int
}

func (m Model) layout() layout {
	var lo layout
	if m.showSidebar {
		lo.sidebarW = sidebarWidth
	}
	headerHeight := 1
	footerHeight := 2
	lo.contentH = max(4, m.height-headerHeight-footerHeight)
	lo.contentW = max(10, m.width)
	lo.mapW = max(10, lo.contentW-lo.sidebarW-1)
	lo.mapH = lo.contentH
	lo.mapY = headerHeight
	if m.showSidebar {
		lo.mapX = lo.sidebarW + 1
	}
	return lo
}

func (lo layout) inMap(x, y int) bool {
	return x >= lo.mapX && x < lo.mapX+lo.mapW && y >= lo.mapY && y < lo.mapY+lo.mapH
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	lo := m.layout()

	// Header
	header := titleStyle.Render(" geoview ─ terminal map viewer ")
	if n := m.v.PendingLoads(); n > 0 {
		header += dimStyle.Render(fmt.Sprintf("  loading %d…", n))
	}
	header = lipgloss.NewStyle().Width(lo.contentW).Padding(0).Render(header)

	// Sidebar
	var sidebar string
	if m.showSidebar {
		m.l.SetSize(sidebarWidth-2, lo.contentH-2)
		sidebar = lipgloss.NewStyle().Width(lo.sidebarW).Render(m.l.View())
	}

	var mapView string
	switch {
	case m.showAttrs:
		// attributes table centered in the map area
		colW := 0
		for _, c := range m.tbl.Columns() {
			colW += c.Width + 3
		}
		if colW == 0 {
			colW = min(60, lo.contentW-6)
		}
		maxW := min(lo.mapW, max(32, colW))
		m.tbl.SetWidth(maxW - 4)
		m.tbl.SetHeight(min(lo.mapH-2, 20))
		attrsBox := boxStyle.Width(maxW).Render(m.tbl.View())
		mapView = lipgloss.Place(lo.mapW, lo.mapH, lipgloss.Center, lipgloss.Center, attrsBox)
	case m.pasteMode:
		m.ta.SetWidth(lo.mapW)
		m.ta.SetHeight(min(lo.mapH, 12))
		mapView = lipgloss.NewStyle().Width(lo.mapW).Height(lo.mapH).Render(m.ta.View())
	default:
		markX, markY := -1, -1
		if m.hovering {
			markX, markY = m.hoverCellX, m.hoverCellY
		}
		canvas := m.scene.Render(m.v.Camera(), lo.mapW, lo.mapH, markX, markY)
		mapView = lipgloss.NewStyle().Width(lo.mapW).Height(lo.mapH).Render(canvas)
	}

	// inspect popup box (center-left overlay, not in map column)
	popup := ""
	if m.inspectPopup != "" && !m.showAttrs {
		maxPopupW := max(20, min(56, lo.contentW/2))
		box := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).MaxWidth(maxPopupW).Render(m.inspectPopup)
		popup = lipgloss.Place(lo.contentW, lo.contentH, lipgloss.Left, lipgloss.Center, box)
	}

	body := mapView
	if m.showSidebar {
		body = lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " ", mapView)
	}

	// Footer / help
	help := m.renderHelp()
	status := dimStyle.Render(" " + m.status + " ")
	coords := ""
	if m.hovering {
		coords = fmt.Sprintf("  x=%.2f y=%.2f", m.hoverWorld.X, m.hoverWorld.Y)
		if len(m.hoverHits) > 0 {
			names := make([]string, len(m.hoverHits))
			for i, l := range m.hoverHits {
				names[i] = lipgloss.NewStyle().Foreground(lipgloss.Color(l.Color.Hex())).Render(l.Name)
			}
			coords += "  " + strings.Join(names, ", ")
		}
		coords = dimStyle.Render(coords) + "  "
	}
	left := lipgloss.JoinHorizontal(lipgloss.Bottom, status, help)
	spacerW := max(0, lo.contentW-lipgloss.Width(left)-lipgloss.Width(coords))
	right := lipgloss.Place(spacerW+lipgloss.Width(coords), 1, lipgloss.Right, lipgloss.Center, coords)
	footer := lipgloss.NewStyle().Width(lo.contentW).Render(lipgloss.JoinHorizontal(lipgloss.Bottom, left, right))

	ui := lipgloss.JoinVertical(lipgloss.Left, header, popup, body, footer)
	return appStyle.Width(lo.contentW).Height(m.height).Render(ui)
}

func (m Model) renderHelp() string {
	if !m.helpVisible {
		return ""
	}
	keys := []string{
		"↑↓←→ pan",
		"+/- zoom",
		"f fit",
		"Tab files",
		"p paste",
		"a attrs",
		"i inspect",
		"r recolor",
		"t crs",
		"c clear",
		"1/2 fill/edges",
		"h help",
		"q quit",
	}
	return dimStyle.Render("  " + strings.Join(keys, "  "))
}
