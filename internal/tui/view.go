package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"gridplot/internal/plot"
)

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	l := m.layout()

	// Header
	header := titleStyle.Render(" gridplot ─ pan, zoom and measure in the terminal ")
	header = lipgloss.NewStyle().Width(l.width).Render(header)

	// Sidebar
	var sidebar string
	if m.showSidebar {
		sidebar = lipgloss.NewStyle().Width(sidebarWidth).Render(m.l.View())
	}

	var mapView string
	switch {
	case m.showAttrs:
		// attributes table centered in the map area
		colW := 0
		for _, c := range m.tbl.Columns() {
			colW += c.Width + 2
		}
		maxW := min(l.mapW, max(32, colW+4))
		m.tbl.SetWidth(maxW - 4)
		m.tbl.SetHeight(min(l.mapH-2, 20))
		attrsBox := boxStyle.Width(maxW).Render(m.tbl.View())
		mapView = lipgloss.Place(l.mapW, l.mapH, lipgloss.Center, lipgloss.Center, attrsBox)
	case m.pasteMode:
		m.ta.SetWidth(l.mapW)
		m.ta.SetHeight(min(l.mapH, 12))
		mapView = lipgloss.NewStyle().Width(l.mapW).Height(l.mapH).Render(m.ta.View())
	case m.inspectPopup != "":
		maxPopupW := max(20, min(48, l.mapW/2))
		box := boxStyle.MaxWidth(maxPopupW).Render(m.inspectPopup)
		mapView = m.renderMapWithBox(l.mapW, l.mapH, box)
	default:
		mapView = m.renderMap(l.mapW, l.mapH)
	}

	body := mapView
	if m.showSidebar {
		body = lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " ", mapView)
	}

	// Footer: status and help on the left, pointer and ruler on the right
	status := dimStyle.Render(" " + m.status + " ")
	if m.statusErr {
		status = errorStyle.Render(" " + m.status + " ")
	}
	left := lipgloss.JoinHorizontal(lipgloss.Bottom, status, m.renderHelp())
	right := dimStyle.Render(m.readout())
	spacerW := max(0, l.width-lipgloss.Width(left)-lipgloss.Width(right))
	footer := lipgloss.NewStyle().Width(l.width).Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, left, strings.Repeat(" ", spacerW), right))

	ui := lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
	return appStyle.Width(l.width).Height(m.height).Render(ui)
}

// readout is the pointer position, ruler length and zoom for the footer.
func (m Model) readout() string {
	var parts []string
	if r := m.plot.Controller().Ruler(); r.Active {
		parts = append(parts, "ruler "+plot.FormatDistance(r.Distance()))
	}
	if m.hovering {
		parts = append(parts, fmt.Sprintf("x=%.5g y=%.5g", m.hoverWorld.X, m.hoverWorld.Y))
	}
	parts = append(parts, fmt.Sprintf("scale %.4g", m.plot.Viewport().Scale()))
	return "  " + strings.Join(parts, "  ") + "  "
}

func (m Model) renderHelp() string {
	if !m.helpVisible {
		return ""
	}
	keys := []string{
		"↑↓←→ pan",
		"PgUp/PgDn page",
		"+/- zoom",
		"0 home",
		"f fit",
		"1-4 layers",
		"g grid",
		"x cross",
		"Tab files",
		"p paste",
		"a attrs",
		"i inspect",
		"h help",
		"q quit",
	}
	return dimStyle.Render("  " + strings.Join(keys, "  "))
}
