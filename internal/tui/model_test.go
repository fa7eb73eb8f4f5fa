package tui

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"gridplot/internal/affine"
	"gridplot/internal/config"
	"gridplot/internal/layers"
)

const sites = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "id": "well", "properties": {"name": "north well", "depth": 12},
     "geometry": {"type": "Point", "coordinates": [1, 1]}},
    {"type": "Feature", "id": "field", "properties": {"name": "field"},
     "geometry": {"type": "Polygon", "coordinates": [[[0, 0], [10, 0], [10, 10], [0, 10], [0, 0]]]}}
  ]
}`

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func send(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func mouse(x, y int, a tea.MouseAction, b tea.MouseButton) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: a, Button: b}
}

var size = tea.WindowSizeMsg{Width: 80, Height: 24}

// loaded returns a sized model showing the sites collection. The map is
// 80x21 cells, 160x84 pixels, starting on screen row 1.
func loaded(t *testing.T) Model {
	t.Helper()
	dir := t.TempDir()
	p := writeFile(t, dir, "sites.geojson", sites)
	m := NewWithPath(config.Default(), p, WithDir(dir))
	if !m.needFit {
		t.Fatal("load before the first size did not defer the fit")
	}
	return send(m, size)
}

func TestLoadFitsOnFirstSize(t *testing.T) {
	m := loaded(t)
	if m.needFit {
		t.Error("fit still pending after WindowSizeMsg")
	}
	vp := m.plot.Viewport()
	if vp.Center() != affine.Pt(5, 5) {
		t.Errorf("center = %v, want (5,5)", vp.Center())
	}
	// (84 - 2*8) / 10
	if math.Abs(vp.Scale()-6.8) > 1e-9 {
		t.Errorf("scale = %v, want 6.8", vp.Scale())
	}
	if !strings.Contains(m.status, "sites.geojson") || m.statusErr {
		t.Errorf("status = %q", m.status)
	}
}

func TestLoadError(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "broken.wkt", "POINT (1")
	m := NewWithPath(config.Default(), p, WithDir(dir))
	if !m.statusErr || !strings.Contains(m.status, "load error") {
		t.Errorf("status = %q, err=%v", m.status, m.statusErr)
	}
	if m.layers.Dataset() != nil {
		t.Error("failed load replaced the dataset")
	}
}

func TestRefreshDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.geojson", sites)
	writeFile(t, dir, "a.WKT", "POINT (1 2)")
	writeFile(t, dir, "notes.txt", "x")
	m := New(config.Default(), WithDir(dir))
	if len(m.items) != 2 {
		t.Fatalf("items = %d, want 2", len(m.items))
	}
	if it := m.items[0].(fileItem); it.title != "a.WKT" || it.desc != ".wkt" {
		t.Errorf("first item = %+v", it)
	}

	m = send(m, size, key("tab"), key("enter"))
	if m.layers.Dataset() == nil || m.selPath != filepath.Join(dir, "a.WKT") {
		t.Errorf("enter in the sidebar loaded %q", m.selPath)
	}
	// the sidebar narrows the map
	if l := m.layout(); l.mapX != sidebarWidth+1 || l.mapW != 80-sidebarWidth-1 {
		t.Errorf("layout = %+v", l)
	}
}

func TestViewKeys(t *testing.T) {
	m := loaded(t)
	vp := m.plot.Viewport()

	m = send(m, key("+"))
	if math.Abs(vp.Scale()-6.8*1.2) > 1e-9 {
		t.Errorf("scale after + = %v", vp.Scale())
	}
	m = send(m, key("up"))
	if vp.Center() == affine.Pt(5, 5) {
		t.Error("up did not pan")
	}
	m = send(m, key("0"))
	if vp.Center() != affine.Pt(5, 5) || math.Abs(vp.Scale()-6.8) > 1e-9 {
		t.Errorf("home = %v at %v", vp.Center(), vp.Scale())
	}

	m = send(m, key("g"))
	if m.plot.GridVisible() {
		t.Error("g did not hide the grid")
	}
	m = send(m, key("1"), key("4"))
	if m.layers.Visible(layers.Points) || m.layers.Visible(layers.Annotations) {
		t.Error("1 and 4 did not hide points and annotations")
	}
	if m.status != "annotations: false" {
		t.Errorf("status = %q", m.status)
	}
}

func TestQuit(t *testing.T) {
	m := New(config.Default(), WithDir(t.TempDir()))
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestPaste(t *testing.T) {
	m := send(New(config.Default(), WithDir(t.TempDir())), size, key("p"))
	if !m.pasteMode {
		t.Fatal("p did not enter paste mode")
	}

	m.ta.SetValue("POINT (1")
	m = send(m, key("enter"))
	if !m.statusErr || !m.pasteMode {
		t.Errorf("invalid WKT: status = %q, paste=%v", m.status, m.pasteMode)
	}

	m.ta.SetValue("LINESTRING (0 0, 5 5)")
	m = send(m, key("enter"))
	if m.pasteMode || m.layers.Annotations() != 1 || m.status != "annotation #1 added" {
		t.Errorf("status = %q, annotations = %d", m.status, m.layers.Annotations())
	}
	// q is text while pasting
	m = send(m, key("p"), key("q"))
	if !m.pasteMode || m.ta.Value() != "q" {
		t.Errorf("paste buffer = %q", m.ta.Value())
	}
	m = send(m, key("esc"))
	if m.pasteMode {
		t.Error("esc did not leave paste mode")
	}

	m = send(m, key("c"))
	if m.layers.Annotations() != 0 {
		t.Error("c did not clear annotations")
	}
}

func TestMouse(t *testing.T) {
	m := loaded(t)
	vp := m.plot.Viewport()
	ctrl := m.plot.Controller()

	// cell (10,5) is pixel (21,18), cell (30,5) is pixel (61,18)
	m = send(m,
		mouse(10, 5, tea.MouseActionPress, tea.MouseButtonRight),
		mouse(30, 5, tea.MouseActionMotion, tea.MouseButtonRight),
	)
	r := ctrl.Ruler()
	if !r.Active || math.Abs(r.Distance()-40/6.8) > 1e-9 {
		t.Fatalf("ruler = %+v", r)
	}
	if !strings.Contains(m.readout(), "ruler 5.882") {
		t.Errorf("readout = %q", m.readout())
	}
	m = send(m, mouse(30, 5, tea.MouseActionRelease, tea.MouseButtonRight))
	if ctrl.Ruler().Active {
		t.Error("release kept the ruler")
	}

	m = send(m,
		mouse(10, 5, tea.MouseActionPress, tea.MouseButtonLeft),
		mouse(20, 5, tea.MouseActionMotion, tea.MouseButtonLeft),
		mouse(20, 5, tea.MouseActionRelease, tea.MouseButtonNone),
	)
	if vp.Center() == affine.Pt(5, 5) || ctrl.Panning() {
		t.Errorf("drag: center = %v panning = %v", vp.Center(), ctrl.Panning())
	}

	before := vp.Scale()
	m = send(m, mouse(40, 10, tea.MouseActionPress, tea.MouseButtonWheelUp))
	if vp.Scale() <= before {
		t.Errorf("wheel up: scale %v -> %v", before, vp.Scale())
	}

	// hover follows the pointer and feeds the crosshair
	m = send(m, key("x"), mouse(40, 11, tea.MouseActionMotion, tea.MouseButtonNone))
	if !m.hovering {
		t.Fatal("pointer on the map is not hovering")
	}
	want := vp.PixelToWorld(affine.Pt(81, 42), ctrl.Bounds())
	if m.hoverWorld != want {
		t.Errorf("hover = %v, want %v", m.hoverWorld, want)
	}
	m = send(m, mouse(40, 23, tea.MouseActionMotion, tea.MouseButtonNone))
	if m.hovering {
		t.Error("footer row counted as map")
	}
}

func TestInspectAndAttrs(t *testing.T) {
	m := loaded(t)
	// pointer near the well
	p := m.plot.Viewport().WorldToPixel(affine.Pt(1, 1), m.plot.Controller().Bounds())
	cx, cy := int(p.X)/dotsX, int(p.Y)/dotsY+headerHeight
	m = send(m, mouse(cx, cy, tea.MouseActionMotion, tea.MouseButtonNone), key("i"))
	if !strings.Contains(m.inspectPopup, "id: well") || !strings.Contains(m.inspectPopup, "name: north well") {
		t.Errorf("popup = %q", m.inspectPopup)
	}
	if m.layers.Selected() == nil || m.layers.Selected().ID != "well" {
		t.Error("inspect did not select the well")
	}
	if !strings.Contains(m.View(), "id: well") {
		t.Error("popup not in view")
	}

	m = send(m, key("esc"), key("a"))
	if m.inspectPopup != "" || !m.showAttrs {
		t.Fatal("esc then a did not switch to the table")
	}
	rows := m.tbl.Rows()
	if len(rows) != 2 || rows[0][1] != "well" {
		t.Fatalf("rows = %v", rows)
	}
	if cols := m.tbl.Columns(); len(cols) != 4 || cols[2].Title != "depth" {
		t.Errorf("columns = %v", cols)
	}
}

func TestViewReusesFrame(t *testing.T) {
	m := loaded(t)
	v := m.View()
	if !strings.Contains(v, "gridplot") {
		t.Fatal("header missing")
	}
	frames := m.plot.Frames()
	m.View()
	if m.plot.Frames() != frames {
		t.Error("unchanged view rendered the plot again")
	}
	m = send(m, key("+"))
	m.View()
	if m.plot.Frames() != frames+1 {
		t.Errorf("frames = %d, want %d", m.plot.Frames(), frames+1)
	}
}
