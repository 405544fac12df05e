package tui

import (
	"context"
	"os"
	"slices"
	"time"

	list "github.com/charmbracelet/bubbles/list"
	table "github.com/charmbracelet/bubbles/table"
	textarea "github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"geoview/internal/geom"
	"geoview/internal/layer"
	"geoview/internal/loader"
	"geoview/internal/proj"
	"geoview/internal/viewer"
)

const frameInterval = time.Second / 30

type frameMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

type Model struct {
	width  int
	height int

	showSidebar bool
	helpVisible bool

	status string

	ctx   context.Context
	v     *viewer.Viewer
	scene *Scene

	// File explorer
	cwd   string
	l     list.Model
	items []list.Item

	// paste mode
	pasteMode bool
	ta        textarea.Model

	// inspect popup
	inspectPopup string

	// hover state
	hovering   bool
	hoverCellX int
	hoverCellY int
	hoverWorld geom.Coord
	hoverHits  []layer.Layer

	// mouse drag panning
	dragging bool
	dragX    int
	dragY    int

	// attributes table
	showAttrs bool
	tbl       table.Model

	crsChoices []string
	crsIndex   int
	recolors   int
}

// New builds the model and starts loading sources (paths or URLs) in the
// background.
func New(ctx context.Context, cfg viewer.Config, sources []string) (Model, error) {
	scene := NewScene()
	v, err := viewer.New(cfg, scene)
	if err != nil {
		return Model{}, err
	}
	m := Model{
		helpVisible: true,
		status:      "geoview ready",
		ctx:         ctx,
		v:           v,
		scene:       scene,
		crsChoices:  proj.Known(),
	}
	if c, err := proj.Canonical(cfg.TargetCRS); err == nil {
		m.crsIndex = max(0, slices.Index(m.crsChoices, c))
	}
	m.cwd, _ = os.Getwd()
	// list setup
	d := list.NewDefaultDelegate()
	d.ShowDescription = false
	m.l = list.New(nil, d, 0, 0)
	m.l.Title = "Files"
	m.l.SetShowHelp(false)
	m.l.SetShowStatusBar(false)
	m.l.SetFilteringEnabled(true)
	// textarea setup
	m.ta = textarea.New()
	m.ta.Placeholder = "Paste GeoJSON here (FeatureCollection, Feature, geometry or one feature per line). Press Ctrl+S to load; Esc to cancel."
	m.ta.CharLimit = 0
	m.ta.SetWidth(50)
	m.ta.SetHeight(6)
	// attributes table setup (columns are inferred per query)
	m.tbl = table.New(table.WithFocused(true))
	m.tbl.SetHeight(12)
	m.refreshDir()
	for _, s := range sources {
		m.open(loader.SourceFor(s))
	}
	return m, nil
}

func (m Model) Init() tea.Cmd { return tick() }

// Close abandons background loads. Call it once the program has exited.
func (m Model) Close() { m.v.Close() }

func (m *Model) open(src loader.Source) {
	m.v.Open(m.ctx, src)
	m.status = "loading: " + src.Name()
}
