package tui

import (
	"fmt"
	"strings"

	list "github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"gridplot/internal/layers"
	"gridplot/internal/viewport"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		if m.needFit {
			m.fit()
		}
	case tea.KeyMsg:
		// If list is visible and filtering, send keys to list and ignore global commands
		if m.showSidebar && m.l.FilterState() == list.Filtering {
			var cmd tea.Cmd
			m.l, cmd = m.l.Update(msg)
			return m, cmd
		}
		if m.pasteMode {
			return m.updatePaste(msg)
		}
		// view keys also reach the sidebar list below
		if m.plot.Controller().Key(msg.String()) {
			break
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "esc":
			m.inspectPopup = ""
			m.showAttrs = false
		case "1":
			m.toggle(layers.Points)
		case "2":
			m.toggle(layers.Lines)
		case "3":
			m.toggle(layers.Polygons)
		case "4":
			m.toggle(layers.Annotations)
		case "l":
			shown := m.layers.ToggleAll()
			m.setStatus(fmt.Sprintf("layers: %v", shown))
		case "g":
			m.plot.SetGridVisible(!m.plot.GridVisible())
			m.setStatus(fmt.Sprintf("grid: %v", m.plot.GridVisible()))
		case "f":
			if m.layers.Dataset() == nil {
				m.setStatus("nothing to fit")
				break
			}
			m.fit()
			m.setStatus("fit to data")
		case "x":
			m.crosshair = !m.crosshair
			m.layers.SetCursor(m.hoverWorld, m.crosshair && m.hovering)
		case "c":
			m.layers.ClearAnnotations()
			m.setStatus("annotations cleared")
		case "tab":
			m.showSidebar = !m.showSidebar
			if m.showSidebar {
				m.refreshDir()
			}
			m.resize()
		case "p":
			m.pasteMode = true
			m.ta.SetValue("")
			m.ta.Focus()
			m.setStatus("paste mode")
		case "h":
			m.helpVisible = !m.helpVisible
		case "a":
			m.showAttrs = !m.showAttrs
			if m.showAttrs {
				m.refreshAttrs()
			}
		case "i":
			m.inspect()
		case "enter":
			if m.showSidebar {
				if it, ok := m.l.SelectedItem().(fileItem); ok {
					m.loadPath(it.path)
				}
			}
		}
	case tea.MouseMsg:
		m.updateMouse(msg)
	}
	// Pass messages to list when visible
	if m.showSidebar {
		var cmd tea.Cmd
		m.l, cmd = m.l.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updatePaste(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.pasteMode = false
		m.ta.Blur()
		m.setStatus("view mode")
		return m, nil
	case "enter":
		w := strings.TrimSpace(m.ta.Value())
		if w == "" {
			m.setStatus("paste: empty")
			return m, nil
		}
		label := fmt.Sprintf("#%d", m.pasted+1)
		if _, err := m.layers.AnnotateWKT(label, w); err != nil {
			m.setError("wkt error", err)
			return m, nil
		}
		m.pasted++
		m.pasteMode = false
		m.ta.Blur()
		m.setStatus("annotation " + label + " added")
		return m, nil
	}
	var cmd tea.Cmd
	m.ta, cmd = m.ta.Update(msg)
	return m, cmd
}

func (m *Model) updateMouse(msg tea.MouseMsg) {
	l := m.layout()
	p, inside := l.pixel(msg.X, msg.Y)
	ctrl := m.plot.Controller()

	switch msg.Action {
	case tea.MouseActionPress:
		if !inside || m.showAttrs || m.pasteMode {
			break
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			ctrl.Wheel(p, 1)
		case tea.MouseButtonWheelDown:
			ctrl.Wheel(p, -1)
		default:
			if b := button(msg.Button); b != viewport.ButtonNone {
				ctrl.PointerDown(b, p)
			}
		}
	case tea.MouseActionMotion:
		// gestures keep tracking outside the map
		ctrl.PointerMove(p)
	case tea.MouseActionRelease:
		// terminals often report releases without a button
		if msg.Button == tea.MouseButtonNone {
			ctrl.CaptureLost()
		} else if b := button(msg.Button); b != viewport.ButtonNone {
			ctrl.PointerUp(b, p)
		}
	}

	m.hovering = inside
	if inside {
		m.hoverWorld = m.plot.Viewport().PixelToWorld(p, ctrl.Bounds())
	}
	m.layers.SetCursor(m.hoverWorld, m.crosshair && m.hovering)
}

func button(b tea.MouseButton) viewport.Button {
	switch b {
	case tea.MouseButtonLeft:
		return viewport.ButtonPrimary
	case tea.MouseButtonRight:
		return viewport.ButtonSecondary
	case tea.MouseButtonMiddle:
		return viewport.ButtonMiddle
	}
	return viewport.ButtonNone
}

func (m *Model) toggle(l layers.Layer) {
	m.setStatus(fmt.Sprintf("%v: %v", l, m.layers.Toggle(l)))
}

// inspect selects the feature nearest to the pointer, or to the centre of
// the view when the pointer is off the map.
func (m *Model) inspect() {
	at := m.plot.Viewport().Center()
	if m.hovering {
		at = m.hoverWorld
	}
	f, dist := m.layers.Inspect(at)
	if f == nil {
		m.inspectPopup = "no feature nearby"
		m.setStatus(m.inspectPopup)
		return
	}
	m.inspectPopup = describe(m.layers.Dataset(), f, dist)
	m.setStatus("inspect " + f.ID)
}

// resize hands the map's pixel bounds to the controller and sizes the
// sidebar list.
func (m *Model) resize() {
	l := m.layout()
	m.plot.Controller().Resize(l.bounds())
	if m.showSidebar {
		m.l.SetSize(sidebarWidth-2, l.height-2)
	}
}
