// Package tui is the terminal host of the plot: a bubbletea program that
// renders into braille cells and feeds keys and mouse events to the viewport
// controller.
package tui

import (
	"io"
	"os"

	list "github.com/charmbracelet/bubbles/list"
	table "github.com/charmbracelet/bubbles/table"
	textarea "github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"gridplot/internal/affine"
	"gridplot/internal/config"
	"gridplot/internal/layers"
	"gridplot/internal/plot"
	"gridplot/internal/viewport"
)

type Model struct {
	width  int
	height int

	cfg    config.Config
	logger *log.Logger
	plot   *plot.Plot
	layers *layers.Set
	frame  *frame

	showSidebar bool
	helpVisible bool

	status    string
	statusErr bool

	// File explorer
	cwd     string
	l       list.Model
	items   []list.Item
	selPath string

	// set when data arrives before the first window size
	needFit bool

	// paste mode
	pasteMode bool
	ta        textarea.Model
	pasted    int

	// inspect popup
	inspectPopup string

	// hover state
	hovering   bool
	hoverWorld affine.Point
	crosshair  bool

	// attributes table
	showAttrs bool
	tbl       table.Model
}

// frame caches the last rendered map; the plot's invalidation drops it.
type frame struct {
	c     *brailleCanvas
	s     string
	valid bool
}

type Option func(*Model)

// WithLogger sets the logger shared by the plot and its layers.
func WithLogger(l *log.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithDir sets the directory the file sidebar starts in.
func WithDir(dir string) Option { return func(m *Model) { m.cwd = dir } }

func New(cfg config.Config, opts ...Option) Model {
	m := Model{
		cfg:         cfg,
		logger:      log.New(io.Discard),
		helpVisible: true,
		status:      "gridplot ready",
		frame:       &frame{},
	}
	m.cwd, _ = os.Getwd()
	for _, opt := range opts {
		opt(&m)
	}

	// braille cells are too coarse for minor lines
	m.plot = plot.New(
		plot.WithLogger(m.logger),
		plot.WithTheme(terminalTheme(cfg.Style)),
		plot.WithGrid(cfg.Grid.TargetSpacing, false, cfg.Grid.ShowLabels),
		plot.WithViewport(viewport.New(
			viewport.WithScaleBounds(cfg.Viewport.MinScale, cfg.Viewport.MaxScale),
			viewport.WithScale(cfg.Viewport.InitialScale),
		)),
	)
	ctrl := m.plot.Controller()
	ctrl.PanFraction = cfg.Input.PanFraction
	ctrl.KeyZoom = cfg.Input.KeyZoom
	ctrl.WheelBase = cfg.Input.WheelBase
	m.layers = layers.New(m.plot.Root(), cfg.Style, layers.WithLogger(m.logger))
	f := m.frame
	m.plot.OnInvalidate(func() { f.valid = false })

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
	m.ta.Placeholder = "Paste WKT here (POINT, LINESTRING, POLYGON and their MULTI forms). Enter adds it; Esc cancels."
	m.ta.CharLimit = 0
	m.ta.SetWidth(50)
	m.ta.SetHeight(6)
	// attributes table, columns are set per dataset
	m.tbl = table.New(table.WithFocused(true))
	m.tbl.SetHeight(12)
	m.refreshDir()
	return m
}

// NewWithPath preloads a file's data at launch.
func NewWithPath(cfg config.Config, path string, opts ...Option) Model {
	m := New(cfg, opts...)
	m.loadPath(path)
	return m
}

func (m Model) Init() tea.Cmd { return nil }

// Plot exposes the plot driven by the model.
func (m Model) Plot() *plot.Plot { return m.plot }

func (m Model) Layers() *layers.Set { return m.layers }

// terminalTheme leaves the background to the terminal.
func terminalTheme(st config.StyleConfig) plot.Theme {
	t := plot.ThemeFromStyle(st)
	t.Background = ""
	return t
}

func (m *Model) setStatus(s string) {
	m.status, m.statusErr = s, false
}

func (m *Model) setError(s string, err error) {
	m.status, m.statusErr = s+": "+err.Error(), true
	m.logger.Warn(s, "err", err)
}
