package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	list "github.com/charmbracelet/bubbles/list"

	"gridplot/internal/geom"
)

type fileItem struct {
	title, desc string
	path        string
}

func (f fileItem) Title() string       { return f.title }
func (f fileItem) Description() string { return f.desc }
func (f fileItem) FilterValue() string { return f.title }

func (m *Model) refreshDir() {
	entries, err := os.ReadDir(m.cwd)
	if err != nil {
		m.setError("read dir", err)
		return
	}
	// ReadDir sorts by name
	var items []list.Item
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !geom.Supported(name) {
			continue
		}
		items = append(items, fileItem{
			title: name,
			desc:  strings.ToLower(filepath.Ext(name)),
			path:  filepath.Join(m.cwd, name),
		})
	}
	m.items = items
	m.l.SetItems(items)
	if len(items) == 0 {
		m.setStatus("no supported files in current directory")
	}
}

// loadPath replaces the layers with the file at p and frames its extent.
func (m *Model) loadPath(p string) {
	d, err := geom.Load(p)
	if err != nil {
		m.setError("load error", err)
		return
	}
	m.selPath = p
	m.layers.Load(d)
	m.fit()
	m.inspectPopup = ""

	pts, ls, polys := d.Counts()
	m.setStatus(fmt.Sprintf("loaded: %s  counts: pts=%d ls=%d poly=%d", filepath.Base(p), pts, ls, polys))
	if m.showAttrs {
		m.refreshAttrs()
	}
}

// fit frames the loaded data, or defers until the map has a size.
func (m *Model) fit() {
	d := m.layers.Dataset()
	if d == nil {
		return
	}
	if m.width == 0 || m.height == 0 {
		m.needFit = true
		return
	}
	m.needFit = false
	m.plot.Controller().Resize(m.layout().bounds())
	m.plot.Fit(d.BBox.Rect(), m.cfg.Viewport.FitMargin)
}
