// Package plot composes a viewport, its adaptive grid, an overlay tree and the
// measurement ruler into a single render entry point.
package plot

import (
	"io"
	"math"
	"strconv"

	"github.com/charmbracelet/log"

	"gridplot/internal/affine"
	"gridplot/internal/config"
	"gridplot/internal/overlay"
	"gridplot/internal/surface"
	"gridplot/internal/viewport"
)

// Theme holds the colours used for everything the plot draws itself.
type Theme struct {
	Background string
	GridMajor  string
	GridMinor  string
	Axis       string
	Label      string
	Ruler      string
	FontSize   float64
}

// DefaultTheme mirrors the default configuration.
func DefaultTheme() Theme { return ThemeFromStyle(config.Default().Style) }

func ThemeFromStyle(s config.StyleConfig) Theme {
	return Theme{
		Background: s.Background,
		GridMajor:  s.GridMajor,
		GridMinor:  s.GridMinor,
		Axis:       s.Axis,
		Label:      s.Label,
		Ruler:      s.Ruler,
		FontSize:   11,
	}
}

// Plot is the interactive surface. It is not safe for concurrent use; all
// calls come from the host's event loop.
type Plot struct {
	vp   *viewport.Viewport
	ctrl *viewport.Controller
	host *overlay.Host

	logger        *log.Logger
	theme         Theme
	targetSpacing float64
	showGrid      bool
	showMinor     bool
	showLabels    bool

	pending   bool
	listeners []func()
	frames    int
}

type Option func(*Plot)

func WithTheme(t Theme) Option { return func(p *Plot) { p.theme = t } }

// WithLogger sets the logger; nil keeps the discarding default.
func WithLogger(l *log.Logger) Option {
	return func(p *Plot) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithGrid sets the major line spacing in pixels and which parts to draw.
func WithGrid(targetSpacing float64, minor, labels bool) Option {
	return func(p *Plot) {
		p.targetSpacing = targetSpacing
		p.showMinor = minor
		p.showLabels = labels
	}
}

// WithViewport replaces the default viewport.
func WithViewport(vp *viewport.Viewport) Option { return func(p *Plot) { p.vp = vp } }

// New builds a plot with defaults taken from config.Default.
func New(opts ...Option) *Plot {
	def := config.Default()
	p := &Plot{
		logger:        log.New(io.Discard),
		theme:         DefaultTheme(),
		targetSpacing: def.Grid.TargetSpacing,
		showGrid:      true,
		showMinor:     def.Grid.ShowMinor,
		showLabels:    def.Grid.ShowLabels,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.vp == nil {
		p.vp = viewport.New()
	}
	p.ctrl = viewport.NewController(p.vp)
	p.host = overlay.NewHost(overlay.WithLogger(p.logger))

	p.vp.OnChange(func(affine.Affine2D) { p.invalidate() })
	p.host.OnInvalidate(p.invalidate)
	p.ctrl.OnRuler(func(viewport.Ruler) { p.invalidate() })
	return p
}

// FromConfig builds a plot whose viewport, grid, input factors and colours
// come from cfg.
func FromConfig(cfg config.Config, logger *log.Logger) *Plot {
	vp := viewport.New(
		viewport.WithScaleBounds(cfg.Viewport.MinScale, cfg.Viewport.MaxScale),
		viewport.WithScale(cfg.Viewport.InitialScale),
	)
	p := New(
		WithViewport(vp),
		WithLogger(logger),
		WithTheme(ThemeFromStyle(cfg.Style)),
		WithGrid(cfg.Grid.TargetSpacing, cfg.Grid.ShowMinor, cfg.Grid.ShowLabels),
	)
	p.ctrl.PanFraction = cfg.Input.PanFraction
	p.ctrl.KeyZoom = cfg.Input.KeyZoom
	p.ctrl.WheelBase = cfg.Input.WheelBase
	return p
}

func (p *Plot) Viewport() *viewport.Viewport     { return p.vp }
func (p *Plot) Controller() *viewport.Controller { return p.ctrl }
func (p *Plot) Host() *overlay.Host              { return p.host }
func (p *Plot) Theme() Theme                     { return p.theme }

// Root is the group overlays are added to.
func (p *Plot) Root() *overlay.Group { return p.host.Root() }

// Frames counts completed render passes.
func (p *Plot) Frames() int { return p.frames }

// SetGridVisible turns the coordinate grid on or off.
func (p *Plot) SetGridVisible(v bool) {
	if p.showGrid != v {
		p.showGrid = v
		p.invalidate()
	}
}

func (p *Plot) GridVisible() bool { return p.showGrid }

// OnInvalidate registers fn to be called when the plot needs a repaint.
// Calls coalesce until the next Render.
func (p *Plot) OnInvalidate(fn func()) { p.listeners = append(p.listeners, fn) }

// Pending reports whether a repaint has been requested since the last Render.
func (p *Plot) Pending() bool { return p.pending }

func (p *Plot) invalidate() {
	if p.pending {
		return
	}
	p.pending = true
	for _, fn := range p.listeners {
		fn()
	}
}

// Fit frames world inside the current bounds and makes it the home view.
func (p *Plot) Fit(world affine.Rect, margin float64) {
	p.vp.Fit(world, p.ctrl.Bounds(), margin)
	p.ctrl.SetHome(p.vp.Center(), p.vp.Scale())
}

// Grid returns the grid plan for bounds at the current transform.
func (p *Plot) Grid(bounds affine.Rect) viewport.GridPlan {
	return viewport.PlanGrid(viewport.TransformFor(p.vp.Scale(), p.vp.Center(), bounds), p.targetSpacing, bounds)
}

// Render draws the background, grid, overlays and ruler onto s.
func (p *Plot) Render(bounds affine.Rect, s surface.Surface) {
	p.ctrl.Resize(bounds)
	t := p.vp.Transform()

	if p.theme.Background != "" {
		s.DrawPolygon([][]affine.Point{surface.Rect(bounds)}, surface.Style{Fill: p.theme.Background})
	}
	if p.showGrid {
		p.drawGrid(s, viewport.PlanGrid(t, p.targetSpacing, bounds), bounds)
	}
	if skipped := p.host.Render(s, t); skipped > 0 {
		p.logger.Debug("overlay elements skipped", "count", skipped)
	}
	p.drawRuler(s, t)

	p.pending = false
	p.frames++
}

// Commands renders into a recorder and returns the draw commands.
func (p *Plot) Commands(bounds affine.Rect) []surface.Command {
	rec := surface.NewRecorder(bounds)
	p.Render(bounds, rec)
	return rec.Commands()
}

func (p *Plot) drawGrid(s surface.Surface, plan viewport.GridPlan, bounds affine.Rect) {
	vertical := plan.Vertical(bounds)
	horizontal := plan.Horizontal(bounds)
	minor := surface.Style{Stroke: p.theme.GridMinor}
	major := surface.Style{Stroke: p.theme.GridMajor}
	axis := surface.Style{Stroke: p.theme.Axis}
	eps := plan.CoarseStep * 1e-9

	style := func(l viewport.GridLine) (surface.Style, bool) {
		switch {
		case !l.Major:
			return minor, p.showMinor && minor.Stroke != ""
		case math.Abs(l.World) < eps:
			return axis, axis.Stroke != ""
		default:
			return major, major.Stroke != ""
		}
	}
	// minor lines first so that majors stay on top
	for _, pass := range []bool{false, true} {
		for _, l := range vertical {
			if st, ok := style(l); ok && l.Major == pass {
				s.DrawLine(affine.Pt(l.Pixel, bounds.Top()), affine.Pt(l.Pixel, bounds.Bottom()), st)
			}
		}
		for _, l := range horizontal {
			if st, ok := style(l); ok && l.Major == pass {
				s.DrawLine(affine.Pt(bounds.Left(), l.Pixel), affine.Pt(bounds.Right(), l.Pixel), st)
			}
		}
	}

	if !p.showLabels || p.theme.Label == "" {
		return
	}
	text := surface.Style{Stroke: p.theme.Label, FontSize: p.theme.FontSize}
	for _, l := range vertical {
		if l.Major {
			s.DrawText(affine.Pt(l.Pixel+2, bounds.Bottom()-2), plan.Label(l.World), text)
		}
	}
	for _, l := range horizontal {
		if l.Major {
			s.DrawText(affine.Pt(bounds.Left()+2, l.Pixel-2), plan.Label(l.World), text)
		}
	}
}

func (p *Plot) drawRuler(s surface.Surface, t affine.Affine2D) {
	r := p.ctrl.Ruler()
	if !r.Active {
		return
	}
	st := surface.Style{Stroke: p.theme.Ruler, FontSize: p.theme.FontSize, LineWidth: 1.5}
	a, b := t.Apply(r.From), t.Apply(r.To)
	s.DrawLine(a, b, st)
	s.DrawCircle(a, 3, st)
	s.DrawCircle(b, 3, st)
	s.DrawText(affine.Pt(b.X+6, b.Y-6), FormatDistance(r.Distance()), st)
}

// FormatDistance renders a ruler length with four significant digits.
func FormatDistance(d float64) string {
	return strconv.FormatFloat(d, 'g', 4, 64)
}
