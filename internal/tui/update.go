package tui

import (
	"fmt"
	"strings"

	list "github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"geoview/internal/camera"
	"geoview/internal/layer"
	"geoview/internal/loader"
	"geoview/internal/viewer"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		for _, ev := range m.v.Frame() {
			m.onEvent(ev)
		}
		if m.hovering {
			m.updateHover()
		}
		return m, tick()
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.syncViewport()
	case tea.KeyMsg:
		// If list is visible and filtering, send keys to list and ignore global commands
		if m.showSidebar && m.l.FilterState() == list.Filtering {
			var cmd tea.Cmd
			m.l, cmd = m.l.Update(msg)
			return m, cmd
		}
		if m.pasteMode {
			switch msg.String() {
			case "esc":
				m.pasteMode = false
				m.ta.Blur()
				return m, nil
			case "ctrl+s":
				text := strings.TrimSpace(m.ta.Value())
				if text == "" {
					m.status = "paste: empty"
					return m, nil
				}
				m.open(loader.TextSource{Label: "pasted", Text: text})
				m.pasteMode = false
				m.ta.Blur()
				return m, nil
			}
			var cmd tea.Cmd
			m.ta, cmd = m.ta.Update(msg)
			return m, cmd
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "esc":
			m.inspectPopup = ""
			m.showAttrs = false
		case "1":
			m.scene.showFill = !m.scene.showFill
			m.status = fmt.Sprintf("fill: %v", m.scene.showFill)
		case "2":
			m.scene.showEdges = !m.scene.showEdges
			m.status = fmt.Sprintf("edges: %v", m.scene.showEdges)
		case "+", "=":
			m.input(camera.ZoomIn)
		case "-", "_":
			m.input(camera.ZoomOut)
		case "up":
			m.input(camera.PanUp)
		case "down":
			m.input(camera.PanDown)
		case "left":
			m.input(camera.PanLeft)
		case "right":
			m.input(camera.PanRight)
		case "f":
			if r, ok := m.v.Layers().BoundingRect(); ok {
				m.v.Camera().Fit(r)
				m.status = "fit: " + r.String()
			}
		case "tab":
			m.showSidebar = !m.showSidebar
			if m.showSidebar {
				m.refreshDir()
			}
			m.syncViewport()
		case "p":
			m.pasteMode = true
			m.ta.SetValue("")
			m.status = "paste mode"
			m.ta.Focus()
		case "h":
			m.helpVisible = !m.helpVisible
		case "a":
			m.showAttrs = !m.showAttrs
			if m.showAttrs {
				m.refreshAttrs()
			}
		case "i":
			m.inspect()
		case "r":
			m.recolor()
		case "t":
			if len(m.crsChoices) > 0 {
				m.crsIndex = (m.crsIndex + 1) % len(m.crsChoices)
				m.v.SetTargetCRS(m.crsChoices[m.crsIndex])
			}
		case "c":
			m.v.Clear()
			m.hoverHits = nil
			m.inspectPopup = ""
		case "enter":
			if m.showSidebar {
				if it, ok := m.l.SelectedItem().(fileItem); ok {
					m.open(loader.FileSource{Path: it.path})
				}
			}
		}
	case tea.MouseMsg:
		lo := m.layout()
		switch {
		case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonWheelUp:
			m.input(camera.ZoomIn)
		case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonWheelDown:
			m.input(camera.ZoomOut)
		case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft && lo.inMap(msg.X, msg.Y):
			m.dragging, m.dragX, m.dragY = true, msg.X, msg.Y
		case msg.Action == tea.MouseActionRelease:
			m.dragging = false
		case msg.Action == tea.MouseActionMotion && m.dragging:
			// one cell is 2x4 micro pixels
			dx, dy := msg.X-m.dragX, msg.Y-m.dragY
			m.v.Camera().PanBy(float32(-dx*2), float32(dy*4))
			m.dragX, m.dragY = msg.X, msg.Y
		}
		if lo.inMap(msg.X, msg.Y) {
			m.hovering = true
			m.hoverCellX = msg.X - lo.mapX
			m.hoverCellY = msg.Y - lo.mapY
			m.updateHover()
		} else {
			m.hovering = false
			m.hoverHits = nil
		}
	}
	// Pass messages to list when visible
	if m.showSidebar {
		var cmd tea.Cmd
		m.l, cmd = m.l.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) input(in camera.Input) {
	m.v.Input(in)
	m.status = fmt.Sprintf("%s  scale: %.4g", in, m.v.Camera().Scale)
}

// syncViewport makes a layer fit span the map width in micro pixels.
func (m *Model) syncViewport() {
	lo := m.layout()
	m.v.Camera().SetReferenceWidth(float64(lo.mapW * 2))
	if m.showSidebar {
		m.l.SetSize(sidebarWidth-2, lo.contentH-2)
	}
}

// updateHover maps the hovered cell's center to world coordinates and
// queries the layers under it.
func (m *Model) updateHover() {
	lo := m.layout()
	px := float64(m.hoverCellX*2) + 1
	py := float64(m.hoverCellY*4) + 2
	m.hoverWorld = m.v.Camera().ScreenToWorld(px, py, lo.mapW*2, lo.mapH*4)
	m.hoverHits = m.v.Hover(m.hoverWorld)
}

func (m *Model) onEvent(ev viewer.Event) {
	switch ev.Kind {
	case viewer.EventLayerSpawned:
		m.status = fmt.Sprintf("loaded: %s  layers=%d", ev.Name, m.v.Layers().Len())
		if ev.Err != nil {
			m.status += "  warning: " + ev.Err.Error()
		}
		if m.showAttrs {
			m.refreshAttrs()
		}
	case viewer.EventLoadFailed:
		m.status = "load error: " + ev.Err.Error()
	case viewer.EventCRSChanged:
		m.status = fmt.Sprintf("target crs: %s (applies to new loads)", ev.CRS)
	case viewer.EventSettingsRejected:
		m.status = "crs error: " + ev.Err.Error()
	case viewer.EventCleared:
		m.status = "cleared"
		m.showAttrs = false
	case viewer.EventLayerRecolored:
		if l, ok := m.v.Layers().Get(ev.Handle); ok {
			m.status = fmt.Sprintf("recolored: %s %s", l.Name, l.Color.Hex())
		}
	}
}

// recolor gives the hovered layers, or every layer when nothing is
// hovered, the next palette color.
func (m *Model) recolor() {
	targets := m.hoverHits
	if len(targets) == 0 {
		targets = m.v.Layers().Layers()
	}
	for _, l := range targets {
		m.recolors++
		m.v.Recolor(l.Handle, layer.ColorFor(l.Handle.Index()+m.recolors))
	}
}

func (m *Model) inspect() {
	targets := m.hoverHits
	if !m.hovering {
		lo := m.layout()
		c := m.v.Camera()
		at := c.ScreenToWorld(float64(lo.mapW), float64(lo.mapH*2), lo.mapW*2, lo.mapH*4)
		targets = m.v.Hover(at)
	}
	if len(targets) == 0 {
		m.inspectPopup = "no layer here"
		m.status = m.inspectPopup
		return
	}
	var sb strings.Builder
	for i, l := range targets {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "name: %s\n", l.Name)
		fmt.Fprintf(&sb, "bbox: %s\n", l.BoundingRect)
		fmt.Fprintf(&sb, "color: %s\n", l.Color.Hex())
		for k, v := range l.Metadata.All() {
			if k == "name" {
				continue
			}
			fmt.Fprintf(&sb, "%s: %s\n", k, layer.FormatValue(v))
		}
	}
	m.inspectPopup = strings.TrimRight(sb.String(), "\n")
	m.status = "inspect popup"
}
